package worker

import (
	"github.com/vardast/ops-dashboard/internal/service"
)

// StartNotificationWorker registers the urgent-record webhook handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
