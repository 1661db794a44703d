package domain

import "time"

// Transition is an audit entry for a status change made through the portal.
type Transition struct {
	ID         string
	IncidentID string
	FromStatus IncidentStatus
	ToStatus   IncidentStatus
	Action     Action
	ActorID    string
	ActorRole  Role
	CreatedAt  time.Time
}
