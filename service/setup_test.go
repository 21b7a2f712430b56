package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"votapp-backend/database"
	"votapp-backend/models"
	"votapp-backend/repository"
)

type testServices struct {
	db *gorm.DB

	auth    *AuthService
	votings *VotingService
	votes   *VoteService

	users repository.UserRepository
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	votingRepo := repository.NewVotingRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	return &testServices{
		db:      db,
		auth:    NewAuthService(userRepo, []byte("test-secret"), time.Hour),
		votings: NewVotingService(votingRepo),
		votes:   NewVoteService(voteRepo, votingRepo, userRepo),
		users:   userRepo,
	}
}

func (ts *testServices) newUser(t *testing.T, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "user-" + uuid.NewString()[:8],
		PasswordHash: "irrelevant",
		Role:         role,
	}
	if err := ts.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func (ts *testServices) newVoting(t *testing.T, creatorID string, options ...string) *models.Voting {
	t.Helper()
	if len(options) == 0 {
		options = []string{"Yes", "No"}
	}
	voting, err := ts.votings.Create(context.Background(), models.CreateVotingInput{
		Title:   "A question to settle?",
		Options: options,
	}, creatorID)
	if err != nil {
		t.Fatalf("failed to create voting: %v", err)
	}
	return voting
}
