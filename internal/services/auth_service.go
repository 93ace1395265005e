package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/FiifiQwontwo/PhotoIsa/internal/brevo"
	"github.com/FiifiQwontwo/PhotoIsa/internal/models"
	"github.com/FiifiQwontwo/PhotoIsa/internal/repository"
	"github.com/FiifiQwontwo/PhotoIsa/internal/utils"
)

const refreshTokenPrefix = "refresh_token:"

type authService struct {
	userRepo   repository.UserRepository
	tokens     repository.TokenStore
	mailer     brevo.Mailer
	jwtManager *utils.JWTManager

	frontendURL string
	hashCost    int
	logger      *zap.Logger
}

// NewAuthService wires the account store, token store, mailer, and JWT
// manager into the authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	tokens repository.TokenStore,
	mailer brevo.Mailer,
	jwtManager *utils.JWTManager,
	frontendURL string,
	hashCost int,
	logger *zap.Logger,
) AuthService {
	if hashCost < bcrypt.MinCost {
		hashCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo:    userRepo,
		tokens:      tokens,
		mailer:      mailer,
		jwtManager:  jwtManager,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		hashCost:    hashCost,
		logger:      logger,
	}
}

// Register creates an inactive account and dispatches the verification
// email. The email is normalized and the username derived from its local
// part. Mail failure after the row is committed is logged, not rolled back.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", ErrInternal)
	}

	token, err := utils.GenerateVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", ErrInternal)
	}

	user := &models.User{
		Email:             email,
		Username:          usernameFromEmail(email),
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Bio:               in.Bio,
		AvatarURL:         in.AvatarURL,
		PasswordHash:      string(hashed),
		VerificationToken: token,
		IsActive:          false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	verifyURL := fmt.Sprintf("%s/api/verify-email/%s", s.frontendURL, token)
	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.FirstName, verifyURL); err != nil {
		// The account exists either way; the link can be re-sent out of band.
		s.logger.Warn("verification email dispatch failed",
			zap.String("email", user.Email),
			zap.Error(err),
		)
	}

	return user, nil
}

// VerifyEmail consumes a verification token: activates the account and
// clears the token so it can never be replayed.
func (s *authService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	user, err := s.userRepo.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}

	if user.IsActive {
		return nil, ErrAlreadyVerified
	}

	user.IsActive = true
	user.VerificationToken = ""
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to activate user: %w", err)
	}
	return user, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password produce the same error so the response cannot be used to
// enumerate accounts. Unverified accounts cannot log in.
func (s *authService) Login(ctx context.Context, email, password string) (*models.AuthTokens, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user during login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrEmailNotVerified
	}

	tokens, err := s.generateAndStoreTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("failed to update last login time",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
	}

	return tokens, nil
}

// Logout deletes the stored refresh token. Succeeds even when no session
// existed.
func (s *authService) Logout(ctx context.Context, userID uint) error {
	key := refreshTokenPrefix + strconv.FormatUint(uint64(userID), 10)
	if err := s.tokens.Del(ctx, key); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// Refresh rotates the token pair: the presented refresh token must match
// the stored copy, which is invalidated before the new pair is issued.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	claims, err := s.jwtManager.Parse(refreshToken)
	if err != nil || claims.Kind != utils.TokenKindRefresh {
		return nil, ErrInvalidRefreshToken
	}

	key := refreshTokenPrefix + strconv.FormatUint(uint64(claims.UserID), 10)
	stored, err := s.tokens.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to read refresh token: %w", err)
	}
	if stored != refreshToken {
		return nil, ErrInvalidRefreshToken
	}

	if err := s.tokens.Del(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to invalidate refresh token: %w", err)
	}

	return s.generateAndStoreTokens(ctx, claims.UserID)
}

// ListUsers returns the public projection of every account.
func (s *authService) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]models.PublicUser, len(users))
	for i := range users {
		out[i] = users[i].Public()
	}
	return out, nil
}

// ElevateToAdministrator grants the full administrative flag set. Calling
// it on an administrator is a no-op.
func (s *authService) ElevateToAdministrator(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user for elevation: %w", err)
	}

	if user.IsAdmin && user.IsStaff && user.IsSuperuser && user.IsActive {
		return nil
	}

	user.IsAdmin = true
	user.IsStaff = true
	user.IsSuperuser = true
	user.IsActive = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to elevate user: %w", err)
	}
	return nil
}

func (s *authService) generateAndStoreTokens(ctx context.Context, userID uint) (*models.AuthTokens, error) {
	access, _, err := s.jwtManager.GenerateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, _, err := s.jwtManager.GenerateRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	key := refreshTokenPrefix + strconv.FormatUint(uint64(userID), 10)
	if err := s.tokens.Set(ctx, key, refresh, s.jwtManager.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{Access: access, Refresh: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// usernameFromEmail derives the unique username from the email local part.
func usernameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
