package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-portal/internal/api/dto"
	"github.com/spec-kit/incident-portal/internal/domain"
	"github.com/spec-kit/incident-portal/internal/service"
	"github.com/spec-kit/incident-portal/internal/validation"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

// IncidentsHandler serves the incident dashboards for every role.
type IncidentsHandler struct {
	service   *service.IncidentService
	validator *validation.Validator
}

// NewIncidentsHandler constructs handler.
func NewIncidentsHandler(incidentService *service.IncidentService, validator *validation.Validator) *IncidentsHandler {
	return &IncidentsHandler{service: incidentService, validator: validator}
}

// Submit POST /incidents.
func (h *IncidentsHandler) Submit(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	var req dto.SubmitIncidentRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	result, err := h.service.Submit(c.UserContext(), principal.Identity, service.SubmitInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": submitResponse(result.DraftID, result.Classification, result.StaffAssignment),
	})
}

// Confirm POST /incidents/:id/confirm.
func (h *IncidentsHandler) Confirm(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	var req dto.ConfirmIncidentRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	incident, err := h.service.Confirm(c.UserContext(), principal.Identity, service.ConfirmInput{
		DraftID:     c.Params("id"),
		Title:       req.Title,
		Description: req.Description,
		Classification: domain.Classification{
			Category:  parsedCategory(req.Classification.Category),
			Severity:  parsedSeverity(req.Classification.Severity),
			Summary:   strings.TrimSpace(req.Classification.Summary),
			EmailText: req.Classification.EmailText,
		},
		StaffAssignment: domain.StaffAssignment{
			StaffID: strings.TrimSpace(req.StaffAssignment.StaffID),
			Name:    req.StaffAssignment.Name,
			Email:   req.StaffAssignment.Email,
			Reason:  req.StaffAssignment.Reason,
		},
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": incidentResponse(*incident)})
}

// List GET /incidents.
func (h *IncidentsHandler) List(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	filter, pageReq, err := parseIncidentQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.UserContext(), principal.Identity, filter, pageReq)
	if err != nil {
		return err
	}
	items := make([]dto.IncidentResponse, 0, len(page.Items))
	for _, incident := range page.Items {
		items = append(items, incidentResponse(incident))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.PageMeta{Page: page.Page, PageSize: page.PageSize, Total: page.Total},
	})
}

// Summary GET /incidents/summary.
func (h *IncidentsHandler) Summary(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	summary, err := h.service.Summary(c.UserContext(), principal.Identity)
	if err != nil {
		return err
	}
	resp := dto.IncidentSummaryResponse{
		Total:      summary.Total,
		ByStatus:   make(map[string]int, len(summary.ByStatus)),
		BySeverity: make(map[string]int, len(summary.BySeverity)),
		ByCategory: make(map[string]int, len(summary.ByCategory)),
	}
	for k, v := range summary.ByStatus {
		resp.ByStatus[string(k)] = v
	}
	for k, v := range summary.BySeverity {
		resp.BySeverity[string(k)] = v
	}
	for k, v := range summary.ByCategory {
		resp.ByCategory[string(k)] = v
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get GET /incidents/:id.
func (h *IncidentsHandler) Get(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.UserContext(), principal.Identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": incidentDetail(*view)})
}

// ApplyAction POST /incidents/:id/actions/:action.
func (h *IncidentsHandler) ApplyAction(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	action, err := domain.ParseAction(c.Params("action"))
	if err != nil {
		return apperrors.NewValidationError("unknown action", map[string]any{"action": c.Params("action")})
	}
	incident, err := h.service.ApplyAction(c.UserContext(), principal.Identity, c.Params("id"), action)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": incidentDetail(service.IncidentView{
		Incident: *incident,
		Actions:  domain.AvailableActions(incident.Status),
	})})
}

// Transitions GET /incidents/:id/transitions.
func (h *IncidentsHandler) Transitions(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	transitions, err := h.service.Transitions(c.UserContext(), principal.Identity, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TransitionResponse, 0, len(transitions))
	for _, t := range transitions {
		items = append(items, transitionResponse(t))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Update PATCH /incidents/:id.
func (h *IncidentsHandler) Update(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	var req dto.UpdateIncidentRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	incident, err := h.service.Edit(c.UserContext(), principal.Identity, c.Params("id"), editInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": incidentResponse(*incident)})
}

// Delete DELETE /incidents/:id.
func (h *IncidentsHandler) Delete(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), principal.Identity, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// editInput converts a request whose validate tags already passed.
func editInput(req dto.UpdateIncidentRequest) service.EditInput {
	input := service.EditInput{
		Title:        req.Title,
		Description:  req.Description,
		AssignedToID: req.AssignedToID,
	}
	if req.Category != nil {
		cat := parsedCategory(*req.Category)
		input.Category = &cat
	}
	if req.Severity != nil {
		sev := parsedSeverity(*req.Severity)
		input.Severity = &sev
	}
	if req.Status != nil {
		status, _ := domain.ParseStatus(*req.Status)
		input.Status = &status
	}
	return input
}

func parsedCategory(raw string) domain.Category {
	cat, _ := domain.ParseCategory(raw)
	return cat
}

func parsedSeverity(raw string) domain.Severity {
	sev, _ := domain.ParseSeverity(raw)
	return sev
}
