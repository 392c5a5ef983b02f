package worker

import (
	"go.uber.org/zap"

	"github.com/krakatau-dev/helpdesk/internal/service"
)

// StartNotificationWorker registers notification handlers and reports
// which delivery channels the configuration enables.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification handlers registered",
		zap.Strings("channels", notificationService.Channels()))
}
