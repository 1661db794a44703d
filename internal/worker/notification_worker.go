package worker

import (
	"github.com/spec-kit/incident-portal/internal/events"
	"github.com/spec-kit/incident-portal/internal/service"
)

// StartNotificationWorker registers the event subscribers: notifications and
// the transition audit recorder.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, recorder *service.TransitionRecorder) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	recorder.Register(dispatcher)
}
