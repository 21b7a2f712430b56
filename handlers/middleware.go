package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"votapp-backend/auth"
	"votapp-backend/cache"
	"votapp-backend/models"
	"votapp-backend/service"
)

// Context keys set by the authentication middleware.
const (
	ctxUserID   = "userID"
	ctxUserName = "userName"
	ctxUserRole = "userRole"
)

// Authenticate verifies the bearer token and stores the caller's identity
// on the request context.
func Authenticate(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				Response{Success: false, Message: "missing bearer token"})
			return
		}

		claims, err := authService.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				Response{Success: false, Message: err.Error()})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserName, claims.Name)
		c.Set(ctxUserRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin gates an endpoint to admin callers. Must run after
// Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch currentRole(c) {
		case models.RoleAdmin:
			c.Next()
		case models.RoleVoter:
			c.AbortWithStatusJSON(http.StatusForbidden,
				Response{Success: false, Message: "admin access required"})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				Response{Success: false, Message: "not authenticated"})
		}
	}
}

// RateLimit throttles requests per user, falling back to the client IP for
// unauthenticated routes.
func RateLimit(limiter cache.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := currentUserID(c)
		if key == "" {
			key = c.ClientIP()
		}

		allowed, err := limiter.AllowUser(c.Request.Context(), key)
		if err != nil || allowed {
			// On limiter failure let the request through; throttling is
			// protection, not an availability dependency.
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusTooManyRequests,
			Response{Success: false, Message: "too many requests"})
	}
}

func currentUserID(c *gin.Context) string {
	id, _ := c.Get(ctxUserID)
	s, _ := id.(string)
	return s
}

func currentRole(c *gin.Context) models.Role {
	role, _ := c.Get(ctxUserRole)
	r, _ := role.(models.Role)
	return r
}
