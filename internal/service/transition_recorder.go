package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/incident-portal/internal/domain"
	"github.com/spec-kit/incident-portal/internal/events"
	"github.com/spec-kit/incident-portal/internal/repository"
)

// TransitionRecorder writes every status change event to the audit store.
type TransitionRecorder struct {
	repo repository.TransitionRepository
}

func NewTransitionRecorder(repo repository.TransitionRepository) *TransitionRecorder {
	return &TransitionRecorder{repo: repo}
}

// Register subscribes the recorder. It is a no-op without a repository.
func (r *TransitionRecorder) Register(dispatcher events.Dispatcher) {
	if r == nil || r.repo == nil || dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventIncidentStatusChanged, r.handle)
}

func (r *TransitionRecorder) handle(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IncidentStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	return r.repo.Create(ctx, &domain.Transition{
		IncidentID: event.IncidentID,
		FromStatus: payload.OldStatus,
		ToStatus:   payload.NewStatus,
		Action:     payload.Action,
		ActorID:    event.Actor.ID,
		ActorRole:  event.Actor.Role,
		CreatedAt:  event.Timestamp,
	})
}
