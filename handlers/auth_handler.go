package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"votapp-backend/models"
	"votapp-backend/service"
)

// AuthHandler serves the authentication endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), input.Name, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so there is
// nothing to revoke server-side; the client discards its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	respondOK(c, http.StatusOK, "logged out", nil)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "current user", user)
}
