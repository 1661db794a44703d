package crm

import (
	"time"

	"github.com/spec-kit/incident-portal/internal/domain"
	"github.com/spec-kit/incident-portal/internal/validation"
)

// listEnvelope is the OData collection shape: {"value": [...]}.
type listEnvelope[T any] struct {
	Value []T `json:"value"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type staffPayload struct {
	StaffID      string `json:"staffId,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password,omitempty"`
	Department   string `json:"department"`
	Skillset     string `json:"skillset"`
	Availability string `json:"availability"`
	Role         string `json:"role"`
}

type staffIDRequest struct {
	StaffID string `json:"staffId"`
}

type incidentPayload struct {
	IncidentID      string    `json:"incidentId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Severity        string    `json:"severity"`
	Status          string    `json:"status"`
	ReporterID      string    `json:"reporterId"`
	ReporterName    string    `json:"reporterName"`
	ReporterEmail   string    `json:"reporterEmail"`
	AssignedToID    string    `json:"assignedToId"`
	AssignedToName  string    `json:"assignedToName"`
	AssignedToEmail string    `json:"assignedToEmail"`
	AISummary       string    `json:"aiSummary"`
	AIEmailText     string    `json:"aiEmailText"`
	CreatedOn       time.Time `json:"createdOn"`
	ModifiedOn      time.Time `json:"modifiedOn"`
}

type incidentIDRequest struct {
	IncidentID string `json:"incidentId"`
}

type updateIncidentRequest struct {
	IncidentID      string  `json:"incidentId"`
	Status          *string `json:"status,omitempty"`
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	Category        *string `json:"category,omitempty"`
	Severity        *string `json:"severity,omitempty"`
	AssignedToID    *string `json:"assignedToId,omitempty"`
	AssignedToName  *string `json:"assignedToName,omitempty"`
	AssignedToEmail *string `json:"assignedToEmail,omitempty"`
}

type submitRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	ReporterID    string `json:"reporterId"`
	ReporterName  string `json:"reporterName"`
	ReporterEmail string `json:"reporterEmail"`
}

type classificationPayload struct {
	Category  string `json:"category"`
	Severity  string `json:"severity"`
	Summary   string `json:"summary"`
	EmailText string `json:"email"`
}

type assignmentPayload struct {
	StaffID string `json:"staffId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Reason  string `json:"reason,omitempty"`
}

type submitResponse struct {
	IncidentID      string                `json:"incidentId"`
	Classification  classificationPayload `json:"classification"`
	StaffAssignment assignmentPayload     `json:"staff_assignment"`
}

type confirmRequest struct {
	IncidentID      string                `json:"incidentId"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	ReporterID      string                `json:"reporterId"`
	ReporterName    string                `json:"reporterName"`
	ReporterEmail   string                `json:"reporterEmail"`
	Classification  classificationPayload `json:"classification"`
	StaffAssignment assignmentPayload     `json:"staff_assignment"`
}

type chatPayload struct {
	MessageID  string    `json:"messageId,omitempty"`
	IncidentID string    `json:"incidentId"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	SenderRole string    `json:"senderRole"`
	IsRead     bool      `json:"isRead"`
}

// Values coming back from the CRM are normalized when recognized and kept
// verbatim otherwise so one odd record does not fail a whole list.

func lenientStatus(s string) domain.IncidentStatus {
	if status, err := domain.ParseStatus(s); err == nil {
		return status
	}
	return domain.IncidentStatus(s)
}

func lenientSeverity(s string) domain.Severity {
	if sev, err := domain.ParseSeverity(s); err == nil {
		return sev
	}
	return domain.Severity(s)
}

func lenientCategory(s string) domain.Category {
	if cat, err := domain.ParseCategory(s); err == nil {
		return cat
	}
	return domain.Category(s)
}

func lenientRole(s string) domain.Role {
	if role, err := domain.ParseRole(s); err == nil {
		return role
	}
	return domain.Role(s)
}

func lenientAvailability(s string) domain.Availability {
	if a, err := domain.ParseAvailability(s); err == nil {
		return a
	}
	return domain.Availability(s)
}

func (p incidentPayload) toDomain() domain.Incident {
	return domain.Incident{
		ID:              p.IncidentID,
		Title:           p.Title,
		Description:     p.Description,
		Category:        lenientCategory(p.Category),
		Severity:        lenientSeverity(p.Severity),
		Status:          lenientStatus(p.Status),
		ReporterID:      p.ReporterID,
		ReporterName:    p.ReporterName,
		ReporterEmail:   p.ReporterEmail,
		AssignedToID:    p.AssignedToID,
		AssignedToName:  p.AssignedToName,
		AssignedToEmail: p.AssignedToEmail,
		AISummary:       p.AISummary,
		AIEmailText:     p.AIEmailText,
		CreatedAt:       p.CreatedOn,
		UpdatedAt:       p.ModifiedOn,
	}
}

func (p staffPayload) toDomain() domain.Staff {
	return domain.Staff{
		ID:           p.StaffID,
		Name:         p.Name,
		Email:        p.Email,
		Department:   p.Department,
		Skillset:     validation.ParseSkillset(p.Skillset),
		Availability: lenientAvailability(p.Availability),
		Role:         lenientRole(p.Role),
	}
}

func staffPayloadFrom(id string, in StaffInput) staffPayload {
	return staffPayload{
		StaffID:      id,
		Name:         in.Name,
		Email:        in.Email,
		Password:     in.Password,
		Department:   in.Department,
		Skillset:     validation.JoinSkillset(in.Skillset),
		Availability: string(in.Availability),
		Role:         string(in.Role),
	}
}

func (p chatPayload) toDomain() domain.ChatMessage {
	return domain.ChatMessage{
		ID:         p.MessageID,
		IncidentID: p.IncidentID,
		Message:    p.Message,
		Timestamp:  p.Timestamp,
		SenderID:   p.SenderID,
		SenderName: p.SenderName,
		SenderRole: lenientRole(p.SenderRole),
		Read:       p.IsRead,
	}
}

func chatPayloadFrom(msg domain.ChatMessage) chatPayload {
	return chatPayload{
		MessageID:  msg.ID,
		IncidentID: msg.IncidentID,
		Message:    msg.Message,
		Timestamp:  msg.Timestamp,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		SenderRole: string(msg.SenderRole),
		IsRead:     msg.Read,
	}
}

func (p classificationPayload) toDomain() domain.Classification {
	return domain.Classification{
		Category:  lenientCategory(p.Category),
		Severity:  lenientSeverity(p.Severity),
		Summary:   p.Summary,
		EmailText: p.EmailText,
	}
}

func classificationPayloadFrom(c domain.Classification) classificationPayload {
	return classificationPayload{
		Category:  string(c.Category),
		Severity:  string(c.Severity),
		Summary:   c.Summary,
		EmailText: c.EmailText,
	}
}

func (p assignmentPayload) toDomain() domain.StaffAssignment {
	return domain.StaffAssignment{StaffID: p.StaffID, Name: p.Name, Email: p.Email, Reason: p.Reason}
}

func assignmentPayloadFrom(a domain.StaffAssignment) assignmentPayload {
	return assignmentPayload{StaffID: a.StaffID, Name: a.Name, Email: a.Email, Reason: a.Reason}
}

func updateRequestFrom(id string, u IncidentUpdate) updateIncidentRequest {
	req := updateIncidentRequest{
		IncidentID:      id,
		Title:           u.Title,
		Description:     u.Description,
		AssignedToID:    u.AssignedToID,
		AssignedToName:  u.AssignedToName,
		AssignedToEmail: u.AssignedToEmail,
	}
	if u.Status != nil {
		s := string(*u.Status)
		req.Status = &s
	}
	if u.Category != nil {
		s := string(*u.Category)
		req.Category = &s
	}
	if u.Severity != nil {
		s := string(*u.Severity)
		req.Severity = &s
	}
	return req
}
