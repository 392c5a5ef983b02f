package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/krakatau-dev/helpdesk/internal/config"
	"github.com/krakatau-dev/helpdesk/internal/events"
)

func TestNotificationChannels(t *testing.T) {
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()

	t.Run("log only by default", func(t *testing.T) {
		svc := NewNotificationService(dispatcher, logger, config.NotificationConfig{})
		assert.Equal(t, []string{"log"}, svc.Channels())
	})

	t.Run("email and webhook follow configuration", func(t *testing.T) {
		svc := NewNotificationService(dispatcher, logger, config.NotificationConfig{
			EmailFrom:  "helpdesk@example.com",
			WebhookURL: "https://hooks.example.com/tickets",
		})
		assert.Equal(t, []string{"log", "email", "webhook"}, svc.Channels())
	})
}
