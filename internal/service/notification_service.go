package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-portal/internal/config"
	"github.com/spec-kit/incident-portal/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIncidentConfirmed, n.handleIncidentConfirmed)
	n.dispatcher.Subscribe(events.EventIncidentStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventIncidentUpdated, n.handleAudit)
	n.dispatcher.Subscribe(events.EventIncidentDeleted, n.handleAudit)
	n.dispatcher.Subscribe(events.EventStaffChanged, n.handleAudit)
	n.dispatcher.Subscribe(events.EventChatMessagePosted, n.handleChatMessage)
}

func (n *NotificationService) handleIncidentConfirmed(ctx context.Context, event events.Event) error {
	n.logger.Info("IncidentConfirmed", zap.String("incident_id", event.IncidentID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("IncidentStatusChanged", zap.String("incident_id", event.IncidentID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleChatMessage(ctx context.Context, event events.Event) error {
	n.logger.Info("ChatMessagePosted", zap.String("incident_id", event.IncidentID), zap.String("sender_id", event.Actor.ID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAudit(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("incident_id", event.IncidentID),
		zap.String("actor_id", event.Actor.ID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("incident_id", event.IncidentID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("incident_id", event.IncidentID),
		zap.String("event_type", string(event.Type)))
}
