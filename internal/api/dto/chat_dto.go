package dto

import (
	"time"

	"github.com/spec-kit/incident-portal/internal/domain"
)

// PostMessageRequest payload.
type PostMessageRequest struct {
	Message string `json:"message" validate:"notblank,max=2000"`
}

// ChatMessageResponse is one chat line.
type ChatMessageResponse struct {
	ID         string      `json:"id"`
	IncidentID string      `json:"incident_id"`
	Message    string      `json:"message"`
	Timestamp  time.Time   `json:"timestamp"`
	SenderID   string      `json:"sender_id"`
	SenderName string      `json:"sender_name"`
	SenderRole domain.Role `json:"sender_role"`
	Read       bool        `json:"read"`
}

// ChatThreadResponse is an incident conversation.
type ChatThreadResponse struct {
	IncidentID string                `json:"incident_id"`
	Messages   []ChatMessageResponse `json:"messages"`
	Unread     int                   `json:"unread"`
}

// AssistantRequest payload.
type AssistantRequest struct {
	Message string `json:"message" validate:"notblank"`
}

// AssistantResponse payload.
type AssistantResponse struct {
	Reply string `json:"reply"`
}
