package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"votapp-backend/cache"
	"votapp-backend/config"
	"votapp-backend/database"
	"votapp-backend/handlers"
	"votapp-backend/repository"
	"votapp-backend/routes"
	"votapp-backend/service"
)

func main() {
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.InitDB(cfg); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("database connection initialized")

	if err := database.SeedUsers(database.DB, cfg.SeedUsers); err != nil {
		log.Fatalf("failed to seed users: %v", err)
	}

	// Redis is an accelerator, not a dependency. The API serves without it.
	if err := cache.InitRedis(cfg); err != nil {
		log.Printf("warning: redis unavailable, running without cache: %v", err)
	} else {
		log.Println("redis connection initialized")
	}

	userRepo := repository.NewUserRepository(database.DB)
	votingRepo := repository.NewVotingRepository(database.DB)
	voteRepo := repository.NewVoteRepository(database.DB)

	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), cfg.JWTExpiresIn)
	votingService := service.NewVotingService(votingRepo)
	voteService := service.NewVoteService(voteRepo, votingRepo, userRepo)

	resultsCache := cache.NewResultsCache()
	hub := handlers.NewHub()

	var limiter cache.RateLimiter
	if cfg.RateLimitEnabled {
		limiter = cache.NewFallbackRateLimiter("api", cfg.UserRatePerSec, cfg.UserBurst)
		log.Println("rate limiting enabled")
	}

	router := routes.SetupRouter(cfg, routes.Deps{
		Auth:    handlers.NewAuthHandler(authService),
		Votings: handlers.NewVotingHandler(votingService, resultsCache),
		Votes:   handlers.NewVoteHandler(voteService, resultsCache, hub),
		Hub:     hub,

		AuthService: authService,
		VoteService: voteService,
		Limiter:     limiter,
	})

	srv := routes.StartServer(cfg, router)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	database.CloseDB()
	cache.CloseRedis()

	log.Println("server stopped")
}
