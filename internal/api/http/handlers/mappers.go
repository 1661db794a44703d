package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-portal/internal/api/dto"
	"github.com/spec-kit/incident-portal/internal/domain"
	"github.com/spec-kit/incident-portal/internal/service"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

func identityResponse(identity domain.Identity) dto.IdentityResponse {
	return dto.IdentityResponse{
		ID:         identity.ID,
		Name:       identity.Name,
		Email:      identity.Email,
		Role:       identity.Role,
		Department: identity.Department,
	}
}

func incidentResponse(incident domain.Incident) dto.IncidentResponse {
	return dto.IncidentResponse{
		ID:              incident.ID,
		Title:           incident.Title,
		Description:     incident.Description,
		Category:        incident.Category,
		Severity:        incident.Severity,
		Status:          incident.Status,
		ReporterID:      incident.ReporterID,
		ReporterName:    incident.ReporterName,
		ReporterEmail:   incident.ReporterEmail,
		AssignedToID:    incident.AssignedToID,
		AssignedToName:  incident.AssignedToName,
		AssignedToEmail: incident.AssignedToEmail,
		AISummary:       incident.AISummary,
		AIEmailText:     incident.AIEmailText,
		CreatedAt:       incident.CreatedAt,
		UpdatedAt:       incident.UpdatedAt,
	}
}

func incidentDetail(view service.IncidentView) dto.IncidentDetailResponse {
	resp := dto.IncidentDetailResponse{
		IncidentResponse: incidentResponse(view.Incident),
		Actions:          view.Actions,
	}
	// The primary button is the forward step; reject is always secondary.
	for _, action := range view.Actions {
		if action != domain.ActionReject {
			next := action
			resp.NextAction = &next
			break
		}
	}
	return resp
}

func submitResponse(draftID string, c domain.Classification, a domain.StaffAssignment) dto.SubmitIncidentResponse {
	return dto.SubmitIncidentResponse{
		DraftID: draftID,
		Classification: dto.ClassificationPayload{
			Category:  string(c.Category),
			Severity:  string(c.Severity),
			Summary:   c.Summary,
			EmailText: c.EmailText,
		},
		StaffAssignment: dto.StaffAssignmentPayload{
			StaffID: a.StaffID,
			Name:    a.Name,
			Email:   a.Email,
			Reason:  a.Reason,
		},
	}
}

func transitionResponse(t domain.Transition) dto.TransitionResponse {
	return dto.TransitionResponse{
		ID:         t.ID,
		FromStatus: t.FromStatus,
		ToStatus:   t.ToStatus,
		Action:     t.Action,
		ActorID:    t.ActorID,
		ActorRole:  t.ActorRole,
		CreatedAt:  t.CreatedAt,
	}
}

func staffResponse(member domain.Staff) dto.StaffResponse {
	skills := member.Skillset
	if skills == nil {
		skills = []string{}
	}
	return dto.StaffResponse{
		ID:           member.ID,
		Name:         member.Name,
		Email:        member.Email,
		Department:   member.Department,
		Skillset:     skills,
		Availability: member.Availability,
		Role:         member.Role,
	}
}

func chatMessageResponse(msg domain.ChatMessage) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		ID:         msg.ID,
		IncidentID: msg.IncidentID,
		Message:    msg.Message,
		Timestamp:  msg.Timestamp,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		SenderRole: msg.SenderRole,
		Read:       msg.Read,
	}
}

// parseIncidentQuery reads list filters. Unknown enum values are rejected
// rather than silently matching nothing.
func parseIncidentQuery(c *fiber.Ctx) (service.IncidentFilter, service.PageRequest, error) {
	filter := service.IncidentFilter{
		Search:       strings.TrimSpace(c.Query("search")),
		AssignedToID: strings.TrimSpace(c.Query("assigned_to")),
		ReporterID:   strings.TrimSpace(c.Query("reporter")),
	}
	fieldErrs := map[string]any{}

	if raw := c.Query("department"); raw != "" {
		cat, err := domain.ParseCategory(raw)
		if err != nil {
			fieldErrs["department"] = err.Error()
		}
		filter.Department = cat
	}
	if raw := c.Query("severity"); raw != "" {
		sev, err := domain.ParseSeverity(raw)
		if err != nil {
			fieldErrs["severity"] = err.Error()
		}
		filter.Severity = sev
	}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			fieldErrs["status"] = err.Error()
		}
		filter.Status = status
	}

	page := service.PageRequest{}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fieldErrs["page"] = "must be a positive integer"
		}
		page.Page = n
	}
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fieldErrs["page_size"] = "must be a positive integer"
		}
		page.PageSize = n
	}

	if len(fieldErrs) > 0 {
		return service.IncidentFilter{}, service.PageRequest{}, apperrors.NewValidationError("invalid query", fieldErrs)
	}
	return filter, page, nil
}
