package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-portal/internal/validation"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

// bind parses the request body into out and checks its validate tags.
func bind(c *fiber.Ctx, v *validation.Validator, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return validation.AsDomainError(v.Struct(out))
}
