package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"votapp-backend/auth"
	"votapp-backend/cache"
	"votapp-backend/database"
	"votapp-backend/models"
	"votapp-backend/repository"
	"votapp-backend/service"
)

var testJWTSecret = []byte("test-secret")

// testPasswordHash is computed once; bcrypt is too slow to run per test.
var testPasswordHash = func() string {
	h, err := auth.HashPassword("password123")
	if err != nil {
		panic(err)
	}
	return h
}()

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB

	admin *models.User
	voter *models.User
}

// setupTestEnvironment builds an in-memory SQLite database and a router with
// the same routes as production, minus CORS and rate limiting.
func setupTestEnvironment(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// A per-test DSN keeps tests isolated; TranslateError is required so
	// unique-index violations surface as gorm.ErrDuplicatedKey.
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
	// SQLite allows one writer; a single connection avoids lock errors.
	sqlDB.SetMaxOpenConns(1)

	database.DB = db
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	env := &testEnv{db: db}
	env.admin = createTestUser(t, db, "admin", models.RoleAdmin)
	env.voter = createTestUser(t, db, "voter1", models.RoleVoter)

	userRepo := repository.NewUserRepository(db)
	votingRepo := repository.NewVotingRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	authService := service.NewAuthService(userRepo, testJWTSecret, time.Hour)
	votingService := service.NewVotingService(votingRepo)
	voteService := service.NewVoteService(voteRepo, votingRepo, userRepo)

	results := cache.NewResultsCache()
	hub := NewHub()

	authHandler := NewAuthHandler(authService)
	votingHandler := NewVotingHandler(votingService, results)
	voteHandler := NewVoteHandler(voteService, results, hub)

	router := gin.New()
	api := router.Group("/api")
	{
		api.GET("/health", Health)

		ag := api.Group("/auth")
		{
			ag.POST("/login", authHandler.Login)
			ag.POST("/logout", authHandler.Logout)
			ag.GET("/me", Authenticate(authService), authHandler.Me)
		}

		votings := api.Group("/votings")
		votings.Use(Authenticate(authService))
		{
			votings.GET("", votingHandler.GetAll)
			votings.GET("/active", votingHandler.GetActive)
			votings.GET("/code/:code", votingHandler.GetByCode)
			votings.GET("/:id", votingHandler.GetByID)
			votings.GET("/:id/ws", hub.HandleWebSocket(voteService))

			admin := votings.Group("")
			admin.Use(RequireAdmin())
			{
				admin.POST("", votingHandler.Create)
				admin.GET("/mine", votingHandler.GetMine)
				admin.PUT("/:id", votingHandler.Update)
				admin.PATCH("/:id/close", votingHandler.Close)
				admin.DELETE("/:id", votingHandler.Delete)
			}
		}

		votes := api.Group("/votes")
		votes.Use(Authenticate(authService))
		{
			votes.POST("", voteHandler.Cast)
			votes.GET("/voting/:id/results", voteHandler.ResultsByID)
			votes.GET("/voting/code/:code/results", voteHandler.ResultsByCode)
			votes.GET("/voting/:id/audit", RequireAdmin(), voteHandler.Audit)
			votes.GET("/user/:votingId/has-voted", voteHandler.HasVoted)
			votes.GET("/user/my-votes", voteHandler.MyVotes)
		}
	}

	env.router = router
	return env
}

func createTestUser(t *testing.T, db *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		PasswordHash: testPasswordHash,
		Role:         role,
	}
	if err := repository.NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user
}

// tokenFor mints a valid JWT for the given user, bypassing the login route.
func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(user, testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// doRequest performs a JSON request against the test router. An empty token
// leaves the request unauthenticated.
func doRequest(env *testEnv, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

// createVoting is a shortcut used by tests that need an existing voting.
func createVoting(t *testing.T, env *testEnv, title string, options ...string) *models.Voting {
	t.Helper()
	if len(options) == 0 {
		options = []string{"Yes", "No"}
	}
	w := doRequest(env, http.MethodPost, "/api/votings", tokenFor(t, env.admin), gin.H{
		"title":   title,
		"options": options,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("failed to create voting: %d %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	var voting models.Voting
	if err := json.Unmarshal(resp.Data, &voting); err != nil {
		t.Fatalf("failed to decode voting: %v", err)
	}
	return &voting
}
