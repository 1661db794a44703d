package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/incident-portal/internal/crm"
	"github.com/spec-kit/incident-portal/internal/domain"
	"github.com/spec-kit/incident-portal/internal/events"
	"github.com/spec-kit/incident-portal/internal/validation"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

const maxMessageLength = 2000

// ChatService reads and appends the per-incident conversation kept by the CRM.
type ChatService struct {
	backend    crm.Backend
	dispatcher events.Dispatcher
	validator  *validation.Validator
	now        func() time.Time
}

// NewChatService constructs the service.
func NewChatService(backend crm.Backend, dispatcher events.Dispatcher) *ChatService {
	return &ChatService{
		backend:    backend,
		dispatcher: dispatcher,
		validator:  validation.New(validation.Policy{}),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ChatThread is an incident conversation as seen by one participant.
type ChatThread struct {
	IncidentID string
	Messages   []domain.ChatMessage
	Unread     int
}

// Retrieve returns the conversation in timestamp order. Unread counts the
// unread messages written by someone other than the caller.
func (s *ChatService) Retrieve(ctx context.Context, actor domain.Identity, incidentID string) (*ChatThread, error) {
	if err := s.authorize(ctx, actor, incidentID); err != nil {
		return nil, err
	}
	msgs, err := s.backend.RetrieveMessages(ctx, incidentID)
	if err != nil {
		return nil, mapCRMError(crm.OpRetrieveMessages, err)
	}

	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	unread := 0
	for _, msg := range msgs {
		if !msg.Read && msg.SenderID != actor.ID {
			unread++
		}
	}
	return &ChatThread{IncidentID: incidentID, Messages: msgs, Unread: unread}, nil
}

// Post appends a message from the caller.
func (s *ChatService) Post(ctx context.Context, actor domain.Identity, incidentID, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if err := s.validator.Fields(validation.Rule{
		Field: "message",
		Value: text,
		Tag:   fmt.Sprintf("notblank,max=%d", maxMessageLength),
	}); err != nil {
		return nil, validation.AsDomainError(err)
	}
	if err := s.authorize(ctx, actor, incidentID); err != nil {
		return nil, err
	}

	posted, err := s.backend.PostMessage(ctx, domain.ChatMessage{
		IncidentID: incidentID,
		Message:    text,
		Timestamp:  s.now(),
		SenderID:   actor.ID,
		SenderName: actor.Name,
		SenderRole: actor.Role,
	})
	if err != nil {
		return nil, mapCRMError(crm.OpPostMessage, err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventChatMessagePosted,
		IncidentID: incidentID,
		Actor:      actorOf(actor),
		Payload: events.ChatMessagePostedPayload{
			MessageID:   posted.ID,
			BodyPreview: stringPreview(posted.Message, 80),
		},
	})
	return posted, nil
}

// authorize limits chat to the reporter, the assignee and admins.
func (s *ChatService) authorize(ctx context.Context, actor domain.Identity, incidentID string) error {
	if strings.TrimSpace(incidentID) == "" {
		return apperrors.NewNotFound("incident", nil)
	}
	incident, err := s.backend.FetchIncident(ctx, incidentID)
	if err != nil {
		return mapCRMError(crm.OpFetchIncident, err)
	}
	if !canView(actor, *incident) {
		return apperrors.NewNotFound("incident", map[string]any{"incident_id": incidentID})
	}
	return nil
}
