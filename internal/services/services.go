package services

import (
	"context"
	"errors"

	"github.com/FiifiQwontwo/PhotoIsa/internal/models"
)

var (
	ErrEmailRequired       = errors.New("user must have an email address")
	ErrDuplicateUser       = errors.New("user with this email or username already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("Invalid Credentials")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrAlreadyVerified     = errors.New("email already verified")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrForbidden           = errors.New("forbidden")
	ErrInternal            = errors.New("internal server error")
)

// RegisterInput carries validated registration data into the service.
// AvatarURL is the stored path of an already-accepted upload, if any.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Bio       string
	AvatarURL string
}

// AuthService defines the account lifecycle operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.AuthTokens, error)
	Logout(ctx context.Context, userID uint) error
	Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error)
	ListUsers(ctx context.Context) ([]models.PublicUser, error)
	ElevateToAdministrator(ctx context.Context, email string) error
}
