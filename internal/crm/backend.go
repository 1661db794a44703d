// Package crm wraps the external CRM endpoints the portal is built on. Each
// Backend method maps to exactly one remote call.
package crm

import (
	"context"

	"github.com/spec-kit/incident-portal/internal/domain"
)

// Backend is the set of operations offered by the CRM.
type Backend interface {
	Login(ctx context.Context, email, password string) (*domain.Identity, error)

	ListStaff(ctx context.Context) ([]domain.Staff, error)
	AddStaff(ctx context.Context, input StaffInput) (*domain.Staff, error)
	EditStaff(ctx context.Context, staffID string, input StaffInput) (*domain.Staff, error)
	DeleteStaff(ctx context.Context, staffID string) error

	FetchIncidents(ctx context.Context) ([]domain.Incident, error)
	FetchIncident(ctx context.Context, incidentID string) (*domain.Incident, error)
	UpdateIncident(ctx context.Context, incidentID string, update IncidentUpdate) error
	DeleteIncident(ctx context.Context, incidentID string) error
	SubmitIncident(ctx context.Context, submission Submission) (*SubmitResult, error)
	// ConfirmIncident answers 404 when the draft was submitted by a
	// different reporter than the one confirming it.
	ConfirmIncident(ctx context.Context, confirmation Confirmation) (*domain.Incident, error)

	RetrieveMessages(ctx context.Context, incidentID string) ([]domain.ChatMessage, error)
	PostMessage(ctx context.Context, msg domain.ChatMessage) (*domain.ChatMessage, error)
}

// StaffInput is the payload for creating or editing a staff member.
// Password is only sent when non-empty.
type StaffInput struct {
	Name         string
	Email        string
	Password     string
	Department   string
	Skillset     []string
	Availability domain.Availability
	Role         domain.Role
}

// IncidentUpdate carries the fields to change; nil fields are left untouched.
type IncidentUpdate struct {
	Status          *domain.IncidentStatus
	Title           *string
	Description     *string
	Category        *domain.Category
	Severity        *domain.Severity
	AssignedToID    *string
	AssignedToName  *string
	AssignedToEmail *string
}

// Submission is an employee's raw incident report sent for classification.
type Submission struct {
	Title         string
	Description   string
	ReporterID    string
	ReporterName  string
	ReporterEmail string
}

// SubmitResult is the CRM's classification of a submission.
type SubmitResult struct {
	DraftID         string
	Classification  domain.Classification
	StaffAssignment domain.StaffAssignment
}

// Confirmation finalizes a submission with the (possibly edited) suggestion.
type Confirmation struct {
	DraftID         string
	Submission      Submission
	Classification  domain.Classification
	StaffAssignment domain.StaffAssignment
}
