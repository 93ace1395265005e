package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/FiifiQwontwo/PhotoIsa/internal/services"
	"github.com/FiifiQwontwo/PhotoIsa/internal/utils"
)

type Handler struct {
	svc        services.AuthService
	uploadsDir string
	log        *zap.Logger
}

func NewHandler(svc services.AuthService, uploadsDir string, log *zap.Logger) *Handler {
	return &Handler{svc: svc, uploadsDir: uploadsDir, log: log}
}

type signupReq struct {
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=60"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,max=50"`
	Email     string `json:"email" form:"email" validate:"required,email,max=100"`
	Password  string `json:"password" form:"password" validate:"required"`
	Password2 string `json:"password2" form:"password2" validate:"required,eqfield=Password"`
	Bio       string `json:"bio" form:"bio"`
}

// Signup registers a new account. Accepts JSON, or multipart form data when
// an avatar is uploaded. No account is created when validation fails.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req signupReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if fieldErrs := utils.ValidateStruct(req); fieldErrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
	}

	avatarURL := ""
	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		if fieldErrs := utils.ValidateAvatar(file.Filename, file.Size); fieldErrs != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
		}
		avatarURL = h.avatarPath(req.Email, file.Filename)
		if err := c.SaveFile(file, avatarURL); err != nil {
			h.log.Error("failed to store avatar", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store avatar"})
		}
	}

	user, err := h.svc.Register(c.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Bio:       req.Bio,
		AvatarURL: avatarURL,
	})
	if err != nil {
		return h.mapError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user.Public())
}

// VerifyEmail consumes the token embedded in the verification link.
func (h *Handler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Params("token")

	if _, err := h.svc.VerifyEmail(c.Context(), token); err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"msg": "Email verified"})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and returns the access/refresh token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Credentials missing"})
	}

	tokens, err := h.svc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg":    "Login Success",
		"tokens": tokens,
	})
}

// Logout terminates the current session. Responds 200 even when no stored
// session existed.
func (h *Handler) Logout(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
	}

	if err := h.svc.Logout(c.Context(), userID); err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"msg": "Successfully Logged out"})
}

type refreshReq struct {
	Refresh string `json:"refresh"`
}

// Refresh rotates an access/refresh pair.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshReq
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "refresh token required"})
	}

	tokens, err := h.svc.Refresh(c.Context(), req.Refresh)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tokens": tokens})
}

// ListUsers returns the public fields of every account. Admin only; the
// routing table applies RequireAuth and RequireAdmin in front of it.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.svc.ListUsers(c.Context())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(users)
}

// avatarPath builds the stored filename from the email local part, the way
// colons and case are stripped from display names.
func (h *Handler) avatarPath(email, original string) string {
	local := email
	if i := strings.Index(email, "@"); i > 0 {
		local = email[:i]
	}
	local = strings.ToLower(strings.ReplaceAll(local, ":", "_"))
	return filepath.Join(h.uploadsDir, fmt.Sprintf("%s%s", local, strings.ToLower(filepath.Ext(original))))
}

// mapError translates service errors to HTTP statuses at the handler
// boundary. Unknown errors become a generic 500.
func (h *Handler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrDuplicateUser),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrAlreadyVerified):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": err.Error()})

	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"msg": err.Error()})

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrEmailNotVerified),
		errors.Is(err, services.ErrInvalidRefreshToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": err.Error()})

	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"msg": err.Error()})

	default:
		h.log.Error("unhandled service error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"msg": "internal server error"})
	}
}
