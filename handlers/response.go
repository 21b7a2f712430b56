package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"votapp-backend/service"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// respondError maps a business error onto its HTTP status. Unclassified
// errors are logged and reported generically; their detail is attached only
// outside release mode.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVotingNotFound),
		errors.Is(err, service.ErrOptionNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Message: err.Error()})

	case errors.Is(err, service.ErrVotingClosed),
		errors.Is(err, service.ErrVotingAlreadyClosed),
		errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error()})

	case errors.Is(err, service.ErrAlreadyVoted):
		c.JSON(http.StatusConflict, Response{Success: false, Message: err.Error()})

	case errors.Is(err, service.ErrNotCreator):
		c.JSON(http.StatusForbidden, Response{Success: false, Message: err.Error()})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: err.Error()})

	default:
		log.Printf("unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		resp := Response{Success: false, Message: "internal server error"}
		if gin.Mode() != gin.ReleaseMode {
			resp.Error = err.Error()
		}
		c.JSON(http.StatusInternalServerError, resp)
	}
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid input", Error: err.Error()})
}
