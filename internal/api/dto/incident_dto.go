package dto

import (
	"time"

	"github.com/spec-kit/incident-portal/internal/domain"
)

// SubmitIncidentRequest payload.
type SubmitIncidentRequest struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
}

// ClassificationPayload is the AI triage, echoed back on confirm.
type ClassificationPayload struct {
	Category  string `json:"category" validate:"category"`
	Severity  string `json:"severity" validate:"severity"`
	Summary   string `json:"summary" validate:"notblank"`
	EmailText string `json:"email_text"`
}

// StaffAssignmentPayload is the proposed assignee.
type StaffAssignmentPayload struct {
	StaffID string `json:"staff_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Reason  string `json:"reason,omitempty"`
}

// SubmitIncidentResponse is the draft returned for review.
type SubmitIncidentResponse struct {
	DraftID         string                 `json:"draft_id"`
	Classification  ClassificationPayload  `json:"classification"`
	StaffAssignment StaffAssignmentPayload `json:"staff_assignment"`
}

// ConfirmIncidentRequest payload. The draft id comes from the path.
type ConfirmIncidentRequest struct {
	Title           string                 `json:"title" validate:"notblank"`
	Description     string                 `json:"description" validate:"notblank"`
	Classification  ClassificationPayload  `json:"classification"`
	StaffAssignment StaffAssignmentPayload `json:"staff_assignment"`
}

// UpdateIncidentRequest is the admin edit form; absent fields are untouched.
type UpdateIncidentRequest struct {
	Title        *string `json:"title" validate:"omitnil,notblank"`
	Description  *string `json:"description" validate:"omitnil,notblank"`
	Category     *string `json:"category" validate:"omitnil,category"`
	Severity     *string `json:"severity" validate:"omitnil,severity"`
	Status       *string `json:"status" validate:"omitnil,status"`
	AssignedToID *string `json:"assigned_to_id"`
}

// IncidentResponse is the full incident.
type IncidentResponse struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Category        domain.Category       `json:"category"`
	Severity        domain.Severity       `json:"severity"`
	Status          domain.IncidentStatus `json:"status"`
	ReporterID      string                `json:"reporter_id"`
	ReporterName    string                `json:"reporter_name"`
	ReporterEmail   string                `json:"reporter_email"`
	AssignedToID    string                `json:"assigned_to_id,omitempty"`
	AssignedToName  string                `json:"assigned_to_name,omitempty"`
	AssignedToEmail string                `json:"assigned_to_email,omitempty"`
	AISummary       string                `json:"ai_summary,omitempty"`
	AIEmailText     string                `json:"ai_email_text,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// IncidentDetailResponse adds the workflow buttons the caller may press.
type IncidentDetailResponse struct {
	IncidentResponse
	Actions    []domain.Action `json:"actions"`
	NextAction *domain.Action  `json:"next_action,omitempty"`
}

// PageMeta describes a paged list.
type PageMeta struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// IncidentSummaryResponse holds chart counts.
type IncidentSummaryResponse struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	BySeverity map[string]int `json:"by_severity"`
	ByCategory map[string]int `json:"by_category"`
}

// TransitionResponse is one audit entry.
type TransitionResponse struct {
	ID         string                `json:"id"`
	FromStatus domain.IncidentStatus `json:"from_status"`
	ToStatus   domain.IncidentStatus `json:"to_status"`
	Action     domain.Action         `json:"action"`
	ActorID    string                `json:"actor_id"`
	ActorRole  domain.Role           `json:"actor_role"`
	CreatedAt  time.Time             `json:"created_at"`
}
