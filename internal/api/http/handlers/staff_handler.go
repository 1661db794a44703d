package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-portal/internal/api/dto"
	"github.com/spec-kit/incident-portal/internal/service"
	"github.com/spec-kit/incident-portal/internal/validation"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

// StaffHandler exposes the admin staff directory.
type StaffHandler struct {
	service   *service.StaffService
	validator *validation.Validator
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService, validator *validation.Validator) *StaffHandler {
	return &StaffHandler{service: staffService, validator: validator}
}

// List GET /admin/staff.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	staff, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.StaffResponse, 0, len(staff))
	for _, member := range staff {
		items = append(items, staffResponse(member))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /admin/staff.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	var req dto.StaffRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	member, err := h.service.Add(c.UserContext(), principal.Identity, staffForm(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": staffResponse(*member)})
}

// Update PATCH /admin/staff/:id.
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	var req dto.StaffRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	member, err := h.service.Edit(c.UserContext(), principal.Identity, c.Params("id"), staffForm(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(*member)})
}

// UpdateSkills POST /admin/staff/:id/skills.
func (h *StaffHandler) UpdateSkills(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	var req dto.SkillsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Add) == 0 && len(req.Remove) == 0 {
		return apperrors.NewValidationError("add or remove required", nil)
	}
	member, err := h.service.UpdateSkills(c.UserContext(), principal.Identity, c.Params("id"), service.SkillsChange{
		Add:    req.Add,
		Remove: req.Remove,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(*member)})
}

// Delete DELETE /admin/staff/:id.
func (h *StaffHandler) Delete(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), principal.Identity, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func staffForm(req dto.StaffRequest) service.StaffForm {
	form := service.StaffForm{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		Skillset:   req.Skillset,
		Role:       req.Role,
	}
	if strings.TrimSpace(req.Availability) != "" {
		form.Availability = &req.Availability
	}
	return form
}
