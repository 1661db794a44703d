package events

import (
	"time"

	"github.com/spec-kit/incident-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIncidentSubmitted     EventType = "incident_submitted"
	EventIncidentConfirmed     EventType = "incident_confirmed"
	EventIncidentStatusChanged EventType = "incident_status_changed"
	EventIncidentUpdated       EventType = "incident_updated"
	EventIncidentDeleted       EventType = "incident_deleted"
	EventStaffChanged          EventType = "staff_changed"
	EventChatMessagePosted     EventType = "chat_message_posted"
)

// Actor identifies who triggered an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	IncidentID string      `json:"incident_id,omitempty"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// IncidentSubmittedPayload carries the draft id and the proposed triage.
type IncidentSubmittedPayload struct {
	Category        domain.Category `json:"category"`
	Severity        domain.Severity `json:"severity"`
	ProposedStaffID string          `json:"proposed_staff_id,omitempty"`
}

// IncidentConfirmedPayload payload.
type IncidentConfirmedPayload struct {
	Title        string          `json:"title"`
	Category     domain.Category `json:"category"`
	Severity     domain.Severity `json:"severity"`
	AssignedToID string          `json:"assigned_to_id,omitempty"`
}

// IncidentStatusChangedPayload payload.
type IncidentStatusChangedPayload struct {
	OldStatus domain.IncidentStatus `json:"old_status"`
	NewStatus domain.IncidentStatus `json:"new_status"`
	Action    domain.Action         `json:"action"`
}

// IncidentUpdatedPayload lists the fields an admin edit touched.
type IncidentUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// StaffChange enumerates staff directory mutations.
type StaffChange string

const (
	StaffAdded   StaffChange = "added"
	StaffEdited  StaffChange = "edited"
	StaffDeleted StaffChange = "deleted"
)

// StaffChangedPayload payload.
type StaffChangedPayload struct {
	StaffID string      `json:"staff_id"`
	Change  StaffChange `json:"change"`
}

// ChatMessagePostedPayload payload.
type ChatMessagePostedPayload struct {
	MessageID   string `json:"message_id"`
	BodyPreview string `json:"body_preview"`
}
