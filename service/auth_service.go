package service

import (
	"context"
	"time"

	"votapp-backend/auth"
	"votapp-backend/models"
	"votapp-backend/repository"
)

// AuthService handles login and token verification. It holds no per-request
// state; one instance serves all requests.
type AuthService struct {
	users       repository.UserRepository
	jwtSecret   []byte
	jwtValidity time.Duration
}

// NewAuthService creates an AuthService.
func NewAuthService(users repository.UserRepository, jwtSecret []byte, jwtValidity time.Duration) *AuthService {
	return &AuthService{
		users:       users,
		jwtSecret:   jwtSecret,
		jwtValidity: jwtValidity,
	}
}

// Login checks the credentials and issues a bearer token. Unknown name and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, name, password string) (string, *models.User, error) {
	user, err := s.users.FindByName(ctx, name)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user, s.jwtSecret, s.jwtValidity)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// VerifyToken validates a bearer token and returns its claims.
func (s *AuthService) VerifyToken(token string) (*auth.Claims, error) {
	return auth.VerifyToken(token, s.jwtSecret)
}

// CurrentUser loads the user behind an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
