package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/orderking/orderking_api/internal/identity"
	"github.com/orderking/orderking_api/internal/reset"
)

// Matches the client-side check: something@something.tld, nothing stricter.
var emailRx = regexp.MustCompile(`\S+@\S+\.\S+`)

const minPasswordLen = 6

// Handler exposes the /auth endpoints.
type Handler struct {
	ids    *identity.Service
	resets *reset.Service
	tokens *TokenManager
	logger *slog.Logger
}

// NewHandler wires the auth endpoints to their services.
func NewHandler(ids *identity.Service, resets *reset.Service, tokens *TokenManager, logger *slog.Logger) *Handler {
	return &Handler{ids: ids, resets: resets, tokens: tokens, logger: logger}
}

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type sessionResponse struct {
	Token   string      `json:"token"`
	Message string      `json:"message"`
	User    userPayload `json:"user"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns a session token.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "Username, email and password are required")
	}
	if len(req.Password) < minPasswordLen {
		return fiber.NewError(http.StatusBadRequest, "Password must be at least 6 characters long")
	}
	if !emailRx.MatchString(req.Email) {
		return fiber.NewError(http.StatusBadRequest, "Invalid email format")
	}

	user, err := h.ids.Register(c.UserContext(), identity.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if errors.Is(err, identity.ErrEmailTaken) {
		return fiber.NewError(http.StatusBadRequest, "Email already in use")
	}
	if err != nil {
		return h.internal(c, "register", err)
	}

	token, err := h.issueFor(user)
	if err != nil {
		return h.internal(c, "register", err)
	}

	h.logger.Info("user registered", slog.String("user_id", user.ID))
	return c.Status(http.StatusCreated).JSON(sessionResponse{
		Token:   token,
		Message: "User registered successfully",
		User:    userPayload{ID: user.ID, Username: user.Username, Email: user.Email},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates credentials and returns a session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "Email and password are required")
	}
	if !emailRx.MatchString(req.Email) {
		return fiber.NewError(http.StatusBadRequest, "Invalid email format")
	}

	user, err := h.ids.Authenticate(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		return fiber.NewError(http.StatusBadRequest, "Invalid email or password")
	}
	if err != nil {
		return h.internal(c, "login", err)
	}

	token, err := h.issueFor(user)
	if err != nil {
		return h.internal(c, "login", err)
	}

	return c.Status(http.StatusOK).JSON(sessionResponse{
		Token:   token,
		Message: "Successfully logged in",
		User:    userPayload{ID: user.ID, Username: user.Username, Email: user.Email},
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a reset challenge. The response is identical for
// known and unknown emails so account existence cannot be probed.
func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "Email is required")
	}
	if !emailRx.MatchString(req.Email) {
		return fiber.NewError(http.StatusBadRequest, "Invalid email format")
	}

	err := h.resets.Request(c.UserContext(), req.Email)
	if errors.Is(err, reset.ErrDeliveryFailed) {
		return fiber.NewError(http.StatusInternalServerError, "Failed to send reset email")
	}
	if err != nil {
		return h.internal(c, "forgot-password", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "If that email is registered, reset instructions have been sent",
	})
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword consumes a reset challenge and stores the new password.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "Email, code and new password are required")
	}
	if len(req.NewPassword) < minPasswordLen {
		return fiber.NewError(http.StatusBadRequest, "Password must be at least 6 characters long")
	}

	err := h.resets.Consume(c.UserContext(), req.Email, req.Code, req.NewPassword)
	if errors.Is(err, reset.ErrInvalidOrExpired) {
		return fiber.NewError(http.StatusBadRequest, "Invalid or expired reset code")
	}
	if err != nil {
		return h.internal(c, "reset-password", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Password reset successfully"})
}

type verifyResetRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyResetToken checks a reset code without consuming it.
func (h *Handler) VerifyResetToken(c *fiber.Ctx) error {
	var req verifyResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Code == "" {
		return fiber.NewError(http.StatusBadRequest, "Email and code are required")
	}
	if !emailRx.MatchString(req.Email) {
		return fiber.NewError(http.StatusBadRequest, "Invalid email format")
	}

	err := h.resets.Verify(c.UserContext(), req.Email, req.Code)
	if errors.Is(err, reset.ErrInvalidOrExpired) {
		return fiber.NewError(http.StatusBadRequest, "Invalid or expired reset code")
	}
	if err != nil {
		return h.internal(c, "verify-reset-token", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"valid": true})
}

// UserInfo returns the profile for the verified session subject.
func (h *Handler) UserInfo(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "invalid or expired token")
	}

	user, err := h.ids.Profile(c.UserContext(), uid)
	if errors.Is(err, identity.ErrNotFound) {
		return fiber.NewError(http.StatusUnauthorized, "invalid or expired token")
	}
	if err != nil {
		return h.internal(c, "user-info", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user": fiber.Map{
			"id":        user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"createdAt": user.CreatedAt,
		},
	})
}

func (h *Handler) issueFor(user identity.User) (string, error) {
	uid, err := uuid.Parse(user.ID)
	if err != nil {
		return "", err
	}
	return h.tokens.Issue(uid)
}

// internal logs the underlying error and returns the generic 500 message.
func (h *Handler) internal(c *fiber.Ctx, op string, err error) error {
	reqID, _ := c.Locals("X-Request-ID").(string)
	h.logger.Error("auth."+op+" failed", slog.Any("error", err), slog.String("request_id", reqID))
	return fiber.NewError(http.StatusInternalServerError, "Server error")
}
