package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"votapp-backend/cache"
	"votapp-backend/database"
)

// Health reports liveness plus the reachability of the backing stores.
// Redis being down degrades the response body but not the status code,
// since the API keeps serving without it.
func Health(c *gin.Context) {
	ctx := c.Request.Context()

	status := http.StatusOK
	overall := "ok"
	dbState := "up"
	redisState := "up"

	sqlDB, err := database.DB.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		dbState = "down"
		overall = "degraded"
		status = http.StatusServiceUnavailable
	}

	if client, err := cache.GetClient(); err != nil {
		redisState = "disabled"
	} else if client.Ping(ctx).Err() != nil {
		redisState = "down"
	}

	c.JSON(status, gin.H{
		"status": overall,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"db":     dbState,
		"redis":  redisState,
	})
}
