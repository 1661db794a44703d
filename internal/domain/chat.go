package domain

import "time"

// ChatMessage is one entry of an incident conversation.
type ChatMessage struct {
	ID         string
	IncidentID string
	Message    string
	Timestamp  time.Time
	SenderID   string
	SenderName string
	SenderRole Role
	Read       bool
}
