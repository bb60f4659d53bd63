package repository

import (
	"context"
	"time"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type WebsiteRepository interface {
	Save(ctx context.Context, website *models.Website) error
	FindByID(ctx context.Context, id int64) (*models.Website, error)
	GetAll(ctx context.Context) ([]*models.Website, error)
	Update(ctx context.Context, website *models.Website) error
}

type MonitorRepository interface {
	Save(ctx context.Context, monitor *models.Monitor) error
	FindByID(ctx context.Context, id int64) (*models.Monitor, error)
	GetAll(ctx context.Context) ([]*models.Monitor, error)
	GetAllActive(ctx context.Context) ([]*models.Monitor, error)
	Update(ctx context.Context, monitor *models.Monitor) error
	UpdateLastCheck(ctx context.Context, id int64, lastCheckAt time.Time) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type JobRepository interface {
	Save(ctx context.Context, job *models.JobRecord) error
	FindByMonitorID(ctx context.Context, monitorID int64) ([]*models.JobRecord, error)
	FindByURL(ctx context.Context, monitorID int64, url string) (*models.JobRecord, error)
	MarkRemoved(ctx context.Context, monitorID int64, url string) error
	CountActive(ctx context.Context) (int, error)
}

type ChangeLogRepository interface {
	Append(ctx context.Context, entry *models.ChangeLogEntry) error
	MarkNotified(ctx context.Context, id int64) error
	FindByMonitorID(ctx context.Context, monitorID int64, limit int) ([]*models.ChangeLogEntry, error)
}

type ChannelRepository interface {
	Save(ctx context.Context, channel *models.NotificationChannel) error
	FindByID(ctx context.Context, id int64) (*models.NotificationChannel, error)
	FindActiveByMonitorID(ctx context.Context, monitorID int64) ([]*models.NotificationChannel, error)
	GetAll(ctx context.Context) ([]*models.NotificationChannel, error)
	AttachToMonitor(ctx context.Context, monitorID, channelID int64) error
}

type ChatRepository interface {
	Save(ctx context.Context, chat *models.Chat) error
	FindByID(ctx context.Context, id int64) (*models.Chat, error)
	Delete(ctx context.Context, id int64) error
	AddMonitor(ctx context.Context, chatID, monitorID int64) error
	RemoveMonitor(ctx context.Context, chatID, monitorID int64) error
	FindByMonitorID(ctx context.Context, monitorID int64) ([]*models.Chat, error)
	UpdateNotificationSettings(ctx context.Context, chatID int64, mode models.NotificationMode, digestTime time.Time) error
	FindByDigestTime(ctx context.Context, hour, minute int) ([]*models.Chat, error)
}
