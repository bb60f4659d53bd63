package notify

import (
	"context"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

// ChannelNotifier доставляет событие в канал уведомлений одного типа.
type ChannelNotifier interface {
	Send(ctx context.Context, channel *models.NotificationChannel, update *models.JobUpdate) error
}
