package repository

import (
	"context"

	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"votapp-backend/models"
)

// UserRepository defines persistence operations for users. Reads return
// (nil, nil) when nothing matches; absence is classified by the caller.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByName(ctx context.Context, name string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)

	// AddVotedVoting records votingID in the user's voted-in set. Adding an
	// already-present id is a no-op.
	AddVotedVoting(ctx context.Context, userID, votingID string) error
	HasVotedIn(ctx context.Context, userID, votingID string) (bool, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a GORM-backed UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadVotedIn(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) FindByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadVotedIn(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *gormUserRepository) AddVotedVoting(ctx context.Context, userID, votingID string) error {
	entry := models.UserVoted{UserID: userID, VotingID: votingID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry).Error
}

func (r *gormUserRepository) HasVotedIn(ctx context.Context, userID, votingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserVoted{}).
		Where("user_id = ? AND voting_id = ?", userID, votingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormUserRepository) loadVotedIn(ctx context.Context, user *models.User) error {
	var entries []models.UserVoted
	err := r.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Find(&entries).Error
	if err != nil {
		return err
	}
	user.VotedIn = make([]string, 0, len(entries))
	for _, e := range entries {
		user.VotedIn = append(user.VotedIn, e.VotingID)
	}
	return nil
}
