package routes

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"votapp-backend/cache"
	"votapp-backend/config"
	"votapp-backend/handlers"
	"votapp-backend/service"
)

// Server wraps http.Server so main can drive graceful shutdown.
type Server struct {
	*http.Server
}

// Deps carries everything the router needs to wire the API together.
type Deps struct {
	Auth    *handlers.AuthHandler
	Votings *handlers.VotingHandler
	Votes   *handlers.VoteHandler
	Hub     *handlers.Hub

	AuthService *service.AuthService
	VoteService *service.VoteService
	Limiter     cache.RateLimiter
}

// SetupRouter builds the Gin engine with CORS, rate limiting and all API
// routes.
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiting runs after Authenticate on the authenticated groups so
	// the bucket is keyed by user id; only the anonymous endpoints fall
	// back to the client IP.
	rateLimit := func(c *gin.Context) { c.Next() }
	if deps.Limiter != nil {
		rateLimit = handlers.RateLimit(deps.Limiter)
	}

	api := router.Group("/api")
	{
		api.GET("/health", rateLimit, handlers.Health)

		auth := api.Group("/auth")
		{
			auth.POST("/login", rateLimit, deps.Auth.Login)
			auth.POST("/logout", rateLimit, deps.Auth.Logout)
			auth.GET("/me", handlers.Authenticate(deps.AuthService), rateLimit, deps.Auth.Me)
		}

		votings := api.Group("/votings")
		votings.Use(handlers.Authenticate(deps.AuthService), rateLimit)
		{
			votings.GET("", deps.Votings.GetAll)
			votings.GET("/active", deps.Votings.GetActive)
			votings.GET("/code/:code", deps.Votings.GetByCode)
			votings.GET("/:id", deps.Votings.GetByID)
			votings.GET("/:id/ws", deps.Hub.HandleWebSocket(deps.VoteService))

			admin := votings.Group("")
			admin.Use(handlers.RequireAdmin())
			{
				admin.POST("", deps.Votings.Create)
				admin.GET("/mine", deps.Votings.GetMine)
				admin.PUT("/:id", deps.Votings.Update)
				admin.PATCH("/:id/close", deps.Votings.Close)
				admin.DELETE("/:id", deps.Votings.Delete)
			}
		}

		votes := api.Group("/votes")
		votes.Use(handlers.Authenticate(deps.AuthService), rateLimit)
		{
			votes.POST("", deps.Votes.Cast)
			votes.GET("/voting/:id/results", deps.Votes.ResultsByID)
			votes.GET("/voting/code/:code/results", deps.Votes.ResultsByCode)
			votes.GET("/voting/:id/audit", handlers.RequireAdmin(), deps.Votes.Audit)
			votes.GET("/user/:votingId/has-voted", deps.Votes.HasVoted)
			votes.GET("/user/my-votes", deps.Votes.MyVotes)
		}
	}

	return router
}

// StartServer starts the HTTP server in a goroutine and returns the wrapper
// for later shutdown.
func StartServer(cfg *config.Config, router *gin.Engine) *Server {
	addr := ":" + cfg.ServerPort

	srv := &Server{
		&http.Server{
			Addr:    addr,
			Handler: router,
		},
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	return srv
}
