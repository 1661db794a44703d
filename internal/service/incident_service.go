package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-portal/internal/crm"
	"github.com/spec-kit/incident-portal/internal/domain"
	"github.com/spec-kit/incident-portal/internal/events"
	"github.com/spec-kit/incident-portal/internal/repository"
	"github.com/spec-kit/incident-portal/internal/validation"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

// StaffDirectory resolves staff members by id.
type StaffDirectory interface {
	Find(ctx context.Context, staffID string) (*domain.Staff, error)
}

// IncidentService coordinates the incident dashboards and the status workflow.
type IncidentService struct {
	backend     crm.Backend
	staff       StaffDirectory
	transitions repository.TransitionRepository
	validator   *validation.Validator
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// IncidentDependencies bundles collaborators for the incident service.
type IncidentDependencies struct {
	Backend     crm.Backend
	Staff       StaffDirectory
	Transitions repository.TransitionRepository
	Validator   *validation.Validator
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewIncidentService constructs the service. Transitions may be nil when no
// audit store is configured.
func NewIncidentService(deps IncidentDependencies) *IncidentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validator := deps.Validator
	if validator == nil {
		validator = validation.New(validation.Policy{})
	}
	return &IncidentService{
		backend:     deps.Backend,
		staff:       deps.Staff,
		transitions: deps.Transitions,
		validator:   validator,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SubmitInput is the employee's new incident form.
type SubmitInput struct {
	Title       string
	Description string
}

// ConfirmInput carries the draft back with the (possibly edited) triage.
type ConfirmInput struct {
	DraftID         string
	Title           string
	Description     string
	Classification  domain.Classification
	StaffAssignment domain.StaffAssignment
}

// EditInput is the admin edit form. Nil fields are left unchanged; an empty
// AssignedToID clears the assignee.
type EditInput struct {
	Title        *string
	Description  *string
	Category     *domain.Category
	Severity     *domain.Severity
	Status       *domain.IncidentStatus
	AssignedToID *string
}

// IncidentView is an incident plus the buttons the caller may press.
type IncidentView struct {
	Incident domain.Incident
	Actions  []domain.Action
}

// IncidentSummary holds the admin chart counts.
type IncidentSummary struct {
	Total      int
	ByStatus   map[domain.IncidentStatus]int
	BySeverity map[domain.Severity]int
	ByCategory map[domain.Category]int
}

// Submit sends a new incident for classification and proposed assignment.
// Nothing is stored until Confirm.
func (s *IncidentService) Submit(ctx context.Context, actor domain.Identity, input SubmitInput) (*crm.SubmitResult, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if err := s.validator.Fields(
		validation.Rule{Field: "title", Value: title, Tag: "notblank"},
		validation.Rule{Field: "description", Value: description, Tag: "notblank"},
	); err != nil {
		return nil, validation.AsDomainError(err)
	}

	result, err := s.backend.SubmitIncident(ctx, crm.Submission{
		Title:         title,
		Description:   description,
		ReporterID:    actor.ID,
		ReporterName:  actor.Name,
		ReporterEmail: actor.Email,
	})
	if err != nil {
		return nil, mapCRMError(crm.OpSubmitIncident, err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventIncidentSubmitted,
		IncidentID: result.DraftID,
		Actor:      actorOf(actor),
		Payload: events.IncidentSubmittedPayload{
			Category:        result.Classification.Category,
			Severity:        result.Classification.Severity,
			ProposedStaffID: result.StaffAssignment.StaffID,
		},
	})
	return result, nil
}

// Confirm creates the incident from a draft once the employee accepts (or
// edits) the proposed classification and assignment.
func (s *IncidentService) Confirm(ctx context.Context, actor domain.Identity, input ConfirmInput) (*domain.Incident, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if err := s.validator.Fields(
		validation.Rule{Field: "draft_id", Value: input.DraftID, Tag: "notblank"},
		validation.Rule{Field: "title", Value: title, Tag: "notblank"},
		validation.Rule{Field: "description", Value: description, Tag: "notblank"},
		validation.Rule{Field: "summary", Value: input.Classification.Summary, Tag: "notblank"},
		validation.Rule{Field: "category", Value: string(input.Classification.Category), Tag: "category"},
		validation.Rule{Field: "severity", Value: string(input.Classification.Severity), Tag: "severity"},
	); err != nil {
		return nil, validation.AsDomainError(err)
	}

	assignment := input.StaffAssignment
	if assignment.StaffID != "" && s.staff != nil {
		member, err := s.staff.Find(ctx, assignment.StaffID)
		if err != nil {
			return nil, err
		}
		assignment.Name = member.Name
		assignment.Email = member.Email
	}

	incident, err := s.backend.ConfirmIncident(ctx, crm.Confirmation{
		DraftID: input.DraftID,
		Submission: crm.Submission{
			Title:         title,
			Description:   description,
			ReporterID:    actor.ID,
			ReporterName:  actor.Name,
			ReporterEmail: actor.Email,
		},
		Classification:  input.Classification,
		StaffAssignment: assignment,
	})
	if err != nil {
		return nil, mapCRMError(crm.OpConfirmIncident, err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventIncidentConfirmed,
		IncidentID: incident.ID,
		Actor:      actorOf(actor),
		Payload: events.IncidentConfirmedPayload{
			Title:        incident.Title,
			Category:     incident.Category,
			Severity:     incident.Severity,
			AssignedToID: incident.AssignedToID,
		},
	})
	return incident, nil
}

// List returns the caller's dashboard list. The role scope always wins over
// the requested filter.
func (s *IncidentService) List(ctx context.Context, actor domain.Identity, filter IncidentFilter, page PageRequest) (Page[domain.Incident], error) {
	all, err := s.backend.FetchIncidents(ctx)
	if err != nil {
		return Page[domain.Incident]{}, mapCRMError(crm.OpFetchIncidents, err)
	}
	return paginate(FilterIncidents(all, scopeFilter(actor, filter)), page), nil
}

// Get returns one incident with the workflow actions available to the caller.
func (s *IncidentService) Get(ctx context.Context, actor domain.Identity, incidentID string) (*IncidentView, error) {
	incident, err := s.fetchVisible(ctx, actor, incidentID)
	if err != nil {
		return nil, err
	}
	actions := []domain.Action{}
	if canAct(actor, *incident) {
		actions = domain.AvailableActions(incident.Status)
	}
	return &IncidentView{Incident: *incident, Actions: actions}, nil
}

// ApplyAction moves an incident one step through the workflow. The CRM is
// updated with a single call; on success the returned incident carries the
// new status without re-fetching.
func (s *IncidentService) ApplyAction(ctx context.Context, actor domain.Identity, incidentID string, action domain.Action) (*domain.Incident, error) {
	incident, err := s.fetchVisible(ctx, actor, incidentID)
	if err != nil {
		return nil, err
	}
	if !canAct(actor, *incident) {
		return nil, apperrors.NewForbidden("only the assigned support staff or an admin can change status")
	}

	next, err := domain.ApplyAction(incident.Status, action)
	if err != nil {
		if errors.Is(err, domain.ErrActionNotAvailable) {
			return nil, apperrors.NewDomainError("INVALID_TRANSITION", "action not available for current status", http.StatusConflict, map[string]any{
				"status":    incident.Status,
				"action":    action,
				"available": domain.AvailableActions(incident.Status),
			})
		}
		return nil, err
	}

	if err := s.backend.UpdateIncident(ctx, incident.ID, crm.IncidentUpdate{Status: &next}); err != nil {
		return nil, mapCRMError(crm.OpUpdateIncident, err)
	}

	previous := incident.Status
	incident.Status = next
	incident.UpdatedAt = s.now()
	s.publishStatusChange(ctx, actor, incident.ID, previous, next, action)
	return incident, nil
}

// Edit applies an admin edit. Any status may be set; the backend does not
// enforce ordering and neither does this form.
func (s *IncidentService) Edit(ctx context.Context, actor domain.Identity, incidentID string, input EditInput) (*domain.Incident, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	incident, err := s.fetch(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	update := crm.IncidentUpdate{}
	fields := []string{}
	rules := []validation.Rule{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		rules = append(rules, validation.Rule{Field: "title", Value: title, Tag: "notblank"})
		update.Title = &title
		fields = append(fields, "title")
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		rules = append(rules, validation.Rule{Field: "description", Value: description, Tag: "notblank"})
		update.Description = &description
		fields = append(fields, "description")
	}
	if input.Category != nil {
		update.Category = input.Category
		fields = append(fields, "category")
	}
	if input.Severity != nil {
		update.Severity = input.Severity
		fields = append(fields, "severity")
	}
	if input.Status != nil {
		update.Status = input.Status
		fields = append(fields, "status")
	}
	if err := s.validator.Fields(rules...); err != nil {
		return nil, validation.AsDomainError(err)
	}

	if input.AssignedToID != nil {
		id, name, email := strings.TrimSpace(*input.AssignedToID), "", ""
		if id != "" {
			if s.staff == nil {
				return nil, apperrors.NewValidationError("staff directory unavailable", nil)
			}
			member, err := s.staff.Find(ctx, id)
			if err != nil {
				return nil, err
			}
			name, email = member.Name, member.Email
		}
		update.AssignedToID, update.AssignedToName, update.AssignedToEmail = &id, &name, &email
		fields = append(fields, "assigned_to")
	}
	if len(fields) == 0 {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}

	if err := s.backend.UpdateIncident(ctx, incident.ID, update); err != nil {
		return nil, mapCRMError(crm.OpUpdateIncident, err)
	}

	previous := incident.Status
	applyUpdate(incident, update)
	incident.UpdatedAt = s.now()

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventIncidentUpdated,
		IncidentID: incident.ID,
		Actor:      actorOf(actor),
		Payload:    events.IncidentUpdatedPayload{Fields: fields},
	})
	if incident.Status != previous {
		s.publishStatusChange(ctx, actor, incident.ID, previous, incident.Status, domain.ActionAdminEdit)
	}
	return incident, nil
}

// Delete removes an incident in the CRM.
func (s *IncidentService) Delete(ctx context.Context, actor domain.Identity, incidentID string) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	if strings.TrimSpace(incidentID) == "" {
		return apperrors.NewValidationError("incident id is required", nil)
	}
	if err := s.backend.DeleteIncident(ctx, incidentID); err != nil {
		return mapCRMError(crm.OpDeleteIncident, err)
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventIncidentDeleted,
		IncidentID: incidentID,
		Actor:      actorOf(actor),
	})
	return nil
}

// Summary counts the incidents visible to the caller by status, severity and
// category. Every known value is present, zero or not.
func (s *IncidentService) Summary(ctx context.Context, actor domain.Identity) (*IncidentSummary, error) {
	all, err := s.backend.FetchIncidents(ctx)
	if err != nil {
		return nil, mapCRMError(crm.OpFetchIncidents, err)
	}
	visible := FilterIncidents(all, scopeFilter(actor, IncidentFilter{}))

	summary := &IncidentSummary{
		Total:      len(visible),
		ByStatus:   map[domain.IncidentStatus]int{},
		BySeverity: map[domain.Severity]int{},
		ByCategory: map[domain.Category]int{},
	}
	for _, st := range domain.Statuses() {
		summary.ByStatus[st] = 0
	}
	for _, sev := range domain.Severities() {
		summary.BySeverity[sev] = 0
	}
	for _, cat := range domain.Categories() {
		summary.ByCategory[cat] = 0
	}
	for _, incident := range visible {
		summary.ByStatus[incident.Status]++
		summary.BySeverity[incident.Severity]++
		summary.ByCategory[incident.Category]++
	}
	return summary, nil
}

// Transitions lists the audit trail for an incident, newest first.
func (s *IncidentService) Transitions(ctx context.Context, actor domain.Identity, incidentID string) ([]domain.Transition, error) {
	incident, err := s.fetchVisible(ctx, actor, incidentID)
	if err != nil {
		return nil, err
	}
	if s.transitions == nil {
		return []domain.Transition{}, nil
	}
	items, err := s.transitions.ListByIncident(ctx, incident.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return items, nil
}

func (s *IncidentService) fetch(ctx context.Context, incidentID string) (*domain.Incident, error) {
	if strings.TrimSpace(incidentID) == "" {
		return nil, apperrors.NewNotFound("incident", nil)
	}
	incident, err := s.backend.FetchIncident(ctx, incidentID)
	if err != nil {
		return nil, mapCRMError(crm.OpFetchIncident, err)
	}
	return incident, nil
}

// fetchVisible hides incidents outside the caller's scope as not found.
func (s *IncidentService) fetchVisible(ctx context.Context, actor domain.Identity, incidentID string) (*domain.Incident, error) {
	incident, err := s.fetch(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, *incident) {
		return nil, apperrors.NewNotFound("incident", map[string]any{"incident_id": incidentID})
	}
	return incident, nil
}

func (s *IncidentService) publishStatusChange(ctx context.Context, actor domain.Identity, incidentID string, from, to domain.IncidentStatus, action domain.Action) {
	s.logger.Info("incident status changed",
		zap.String("incident_id", incidentID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("action", string(action)),
		zap.String("actor_id", actor.ID))

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventIncidentStatusChanged,
		IncidentID: incidentID,
		Actor:      actorOf(actor),
		Payload:    events.IncidentStatusChangedPayload{OldStatus: from, NewStatus: to, Action: action},
	})
}

func applyUpdate(incident *domain.Incident, u crm.IncidentUpdate) {
	if u.Title != nil {
		incident.Title = *u.Title
	}
	if u.Description != nil {
		incident.Description = *u.Description
	}
	if u.Category != nil {
		incident.Category = *u.Category
	}
	if u.Severity != nil {
		incident.Severity = *u.Severity
	}
	if u.Status != nil {
		incident.Status = *u.Status
	}
	if u.AssignedToID != nil {
		incident.AssignedToID = *u.AssignedToID
		incident.AssignedToName = deref(u.AssignedToName)
		incident.AssignedToEmail = deref(u.AssignedToEmail)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
