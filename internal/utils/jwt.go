package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// Claims bind a signed token to an account identity.
type Claims struct {
	UserID uint   `json:"user_id"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// JWTManager issues and parses HS256 access/refresh token pairs.
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTManager(secret string, accessMinutes, refreshDays int) *JWTManager {
	return &JWTManager{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessMinutes) * time.Minute,
		refreshTTL: time.Duration(refreshDays) * 24 * time.Hour,
	}
}

// GenerateAccessToken signs a short-lived access token for the account.
func (j *JWTManager) GenerateAccessToken(userID uint) (string, time.Time, error) {
	return j.generate(userID, TokenKindAccess, j.accessTTL)
}

// GenerateRefreshToken signs a longer-lived refresh token for the account.
func (j *JWTManager) GenerateRefreshToken(userID uint) (string, time.Time, error) {
	return j.generate(userID, TokenKindRefresh, j.refreshTTL)
}

func (j *JWTManager) generate(userID uint, kind string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := &Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique per issuance so a rotated token never equals its
			// predecessor even inside the same second.
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, exp, nil
}

// Parse validates the signature and expiry and returns the claims.
func (j *JWTManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshTTL reports the configured refresh token lifetime.
func (j *JWTManager) RefreshTTL() time.Duration {
	return j.refreshTTL
}
