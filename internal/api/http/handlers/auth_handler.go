package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vardast/ops-dashboard/internal/api/dto"
	"github.com/vardast/ops-dashboard/internal/auth"
	"github.com/vardast/ops-dashboard/internal/service"
	apperrors "github.com/vardast/ops-dashboard/pkg/util/errorutil"
)

// AuthHandler exposes the password gate.
type AuthHandler struct {
	auth  *service.AuthService
	forms *service.FormService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, forms *service.FormService) *AuthHandler {
	return &AuthHandler{auth: authService, forms: forms}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if h.auth.Enabled() && req.Password == "" {
		return apperrors.NewValidationError("password required", nil)
	}

	token, exp, err := h.auth.Login(c.UserContext(), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: exp}})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sessionID, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	if err := h.auth.Logout(c.UserContext(), sessionID); err != nil {
		return err
	}
	if sessionID != auth.DefaultSession {
		h.forms.Forget(sessionID)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
