package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FiifiQwontwo/PhotoIsa/internal/utils"
)

type fixture struct {
	svc    AuthService
	repo   *fakeUserRepo
	tokens *fakeTokenStore
	mailer *fakeMailer
	jwt    *utils.JWTManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeUserRepo()
	tokens := newFakeTokenStore()
	mailer := &fakeMailer{}
	jwtManager := utils.NewJWTManager("test-secret-test-secret-test-secret", 15, 7)
	svc := NewAuthService(repo, tokens, mailer, jwtManager, "http://localhost:8080", 4, zap.NewNop())
	return &fixture{svc: svc, repo: repo, tokens: tokens, mailer: mailer, jwt: jwtManager}
}

func registerDefault(t *testing.T, f *fixture) string {
	t.Helper()
	user, err := f.svc.Register(context.Background(), RegisterInput{
		FirstName: "A",
		LastName:  "B",
		Email:     "a@x.com",
		Password:  "p1",
	})
	require.NoError(t, err)
	return user.VerificationToken
}

func TestRegister(t *testing.T) {
	t.Run("creates an inactive account pending verification", func(t *testing.T) {
		f := newFixture(t)

		user, err := f.svc.Register(context.Background(), RegisterInput{
			FirstName: "A",
			LastName:  "B",
			Email:     "a@x.com",
			Password:  "p1",
		})

		require.NoError(t, err)
		assert.Equal(t, "a", user.Username)
		assert.False(t, user.IsActive)
		assert.Len(t, user.VerificationToken, utils.VerificationTokenLength)
		assert.NotEqual(t, "p1", user.PasswordHash)
	})

	t.Run("normalizes the email before persisting", func(t *testing.T) {
		f := newFixture(t)

		user, err := f.svc.Register(context.Background(), RegisterInput{
			FirstName: "A", LastName: "B",
			Email:    "  Alice@Example.COM ",
			Password: "p1",
		})

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("rejects an empty email", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Register(context.Background(), RegisterInput{
			FirstName: "A", LastName: "B",
			Email:    "   ",
			Password: "p1",
		})

		assert.ErrorIs(t, err, ErrEmailRequired)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		f := newFixture(t)
		registerDefault(t, f)

		_, err := f.svc.Register(context.Background(), RegisterInput{
			FirstName: "C", LastName: "D",
			Email:    "a@x.com",
			Password: "p2",
		})

		assert.ErrorIs(t, err, ErrDuplicateUser)
	})

	t.Run("sends a verification email carrying the token link", func(t *testing.T) {
		f := newFixture(t)

		token := registerDefault(t, f)

		require.Len(t, f.mailer.sent, 1)
		assert.Equal(t, "a@x.com", f.mailer.sent[0].to)
		assert.True(t, strings.HasSuffix(f.mailer.sent[0].verifyURL, "/api/verify-email/"+token))
	})

	t.Run("does not roll back the account when mail dispatch fails", func(t *testing.T) {
		f := newFixture(t)
		f.mailer.failWith = errors.New("smtp down")

		_, err := f.svc.Register(context.Background(), RegisterInput{
			FirstName: "A", LastName: "B",
			Email:    "a@x.com",
			Password: "p1",
		})

		require.NoError(t, err)
		_, err = f.repo.FindByEmail(context.Background(), "a@x.com")
		assert.NoError(t, err)
	})
}

func TestVerifyEmail(t *testing.T) {
	t.Run("activates the account and clears the token", func(t *testing.T) {
		f := newFixture(t)
		token := registerDefault(t, f)

		user, err := f.svc.VerifyEmail(context.Background(), token)

		require.NoError(t, err)
		assert.True(t, user.IsActive)
		assert.Empty(t, user.VerificationToken)
	})

	t.Run("unknown token is not found and mutates nothing", func(t *testing.T) {
		f := newFixture(t)
		registerDefault(t, f)

		_, err := f.svc.VerifyEmail(context.Background(), "nope")

		assert.ErrorIs(t, err, ErrUserNotFound)
		stored, ferr := f.repo.FindByEmail(context.Background(), "a@x.com")
		require.NoError(t, ferr)
		assert.False(t, stored.IsActive)
	})

	t.Run("consumed token cannot be replayed", func(t *testing.T) {
		f := newFixture(t)
		token := registerDefault(t, f)

		_, err := f.svc.VerifyEmail(context.Background(), token)
		require.NoError(t, err)

		_, err = f.svc.VerifyEmail(context.Background(), token)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("already active account reports already verified", func(t *testing.T) {
		f := newFixture(t)
		token := registerDefault(t, f)

		// Re-point a token at an already-active account.
		user, err := f.repo.FindByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		user.IsActive = true
		user.VerificationToken = token
		require.NoError(t, f.repo.Update(context.Background(), user))

		_, err = f.svc.VerifyEmail(context.Background(), token)
		assert.ErrorIs(t, err, ErrAlreadyVerified)
	})
}

func TestLogin(t *testing.T) {
	t.Run("unverified account cannot log in", func(t *testing.T) {
		f := newFixture(t)
		registerDefault(t, f)

		_, err := f.svc.Login(context.Background(), "a@x.com", "p1")

		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})

	t.Run("verified account receives a distinct token pair bound to it", func(t *testing.T) {
		f := newFixture(t)
		token := registerDefault(t, f)
		_, err := f.svc.VerifyEmail(context.Background(), token)
		require.NoError(t, err)

		tokens, err := f.svc.Login(context.Background(), "a@x.com", "p1")

		require.NoError(t, err)
		assert.NotEqual(t, tokens.Access, tokens.Refresh)

		accessClaims, err := f.jwt.Parse(tokens.Access)
		require.NoError(t, err)
		refreshClaims, err := f.jwt.Parse(tokens.Refresh)
		require.NoError(t, err)
		assert.Equal(t, accessClaims.UserID, refreshClaims.UserID)
		assert.Equal(t, utils.TokenKindAccess, accessClaims.Kind)
		assert.Equal(t, utils.TokenKindRefresh, refreshClaims.Kind)
	})

	t.Run("updates the last login time", func(t *testing.T) {
		f := newFixture(t)
		token := registerDefault(t, f)
		_, err := f.svc.VerifyEmail(context.Background(), token)
		require.NoError(t, err)

		_, err = f.svc.Login(context.Background(), "a@x.com", "p1")
		require.NoError(t, err)

		user, err := f.repo.FindByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("unknown email and wrong password fail identically", func(t *testing.T) {
		f := newFixture(t)
		token := registerDefault(t, f)
		_, err := f.svc.VerifyEmail(context.Background(), token)
		require.NoError(t, err)

		_, errUnknown := f.svc.Login(context.Background(), "nobody@x.com", "p1")
		_, errWrongPw := f.svc.Login(context.Background(), "a@x.com", "wrong")

		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
	})
}

func TestLogout(t *testing.T) {
	t.Run("deletes the stored refresh token", func(t *testing.T) {
		f := newFixture(t)
		token := registerDefault(t, f)
		_, err := f.svc.VerifyEmail(context.Background(), token)
		require.NoError(t, err)
		_, err = f.svc.Login(context.Background(), "a@x.com", "p1")
		require.NoError(t, err)

		require.NoError(t, f.svc.Logout(context.Background(), 1))

		_, err = f.tokens.Get(context.Background(), "refresh_token:1")
		assert.Error(t, err)
	})

	t.Run("succeeds when no session exists", func(t *testing.T) {
		f := newFixture(t)

		assert.NoError(t, f.svc.Logout(context.Background(), 42))
	})
}

func TestRefresh(t *testing.T) {
	login := func(t *testing.T, f *fixture) *fixtureTokens {
		t.Helper()
		token := registerDefault(t, f)
		_, err := f.svc.VerifyEmail(context.Background(), token)
		require.NoError(t, err)
		tokens, err := f.svc.Login(context.Background(), "a@x.com", "p1")
		require.NoError(t, err)
		return &fixtureTokens{access: tokens.Access, refresh: tokens.Refresh}
	}

	t.Run("rotates the pair and invalidates the previous refresh token", func(t *testing.T) {
		f := newFixture(t)
		initial := login(t, f)

		rotated, err := f.svc.Refresh(context.Background(), initial.refresh)
		require.NoError(t, err)
		assert.NotEqual(t, initial.refresh, rotated.Refresh)

		_, err = f.svc.Refresh(context.Background(), initial.refresh)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("rejects an access token presented as refresh", func(t *testing.T) {
		f := newFixture(t)
		initial := login(t, f)

		_, err := f.svc.Refresh(context.Background(), initial.access)

		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Refresh(context.Background(), "not-a-jwt")

		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

type fixtureTokens struct {
	access  string
	refresh string
}

func TestListUsers(t *testing.T) {
	t.Run("returns public fields only", func(t *testing.T) {
		f := newFixture(t)
		registerDefault(t, f)
		_, err := f.svc.Register(context.Background(), RegisterInput{
			FirstName: "C", LastName: "D",
			Email:    "c@y.com",
			Password: "p2",
		})
		require.NoError(t, err)

		users, err := f.svc.ListUsers(context.Background())

		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "a@x.com", users[0].Email)
		assert.Equal(t, "c@y.com", users[1].Email)
	})
}

func TestElevateToAdministrator(t *testing.T) {
	t.Run("sets all administrative flags", func(t *testing.T) {
		f := newFixture(t)
		registerDefault(t, f)

		require.NoError(t, f.svc.ElevateToAdministrator(context.Background(), "a@x.com"))

		user, err := f.repo.FindByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
		assert.True(t, user.IsStaff)
		assert.True(t, user.IsSuperuser)
		assert.True(t, user.IsActive)
	})

	t.Run("is idempotent", func(t *testing.T) {
		f := newFixture(t)
		registerDefault(t, f)

		require.NoError(t, f.svc.ElevateToAdministrator(context.Background(), "a@x.com"))
		require.NoError(t, f.svc.ElevateToAdministrator(context.Background(), "a@x.com"))

		user, err := f.repo.FindByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.ElevateToAdministrator(context.Background(), "nobody@x.com")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
