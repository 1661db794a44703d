package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-portal/internal/api/dto"
	"github.com/spec-kit/incident-portal/internal/auth"
	"github.com/spec-kit/incident-portal/internal/service"
	"github.com/spec-kit/incident-portal/internal/validation"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

// AuthHandler handles login, logout and the current identity.
type AuthHandler struct {
	service   *service.AuthService
	validator *validation.Validator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, validator *validation.Validator) *AuthHandler {
	return &AuthHandler{service: authService, validator: validator}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	result, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      identityResponse(result.Identity),
	}})
}

// Logout POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	if err := h.service.Logout(c.UserContext(), principal); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": identityResponse(principal.Identity)})
}

func principalOf(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}
