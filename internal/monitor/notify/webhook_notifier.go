package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/remote-radar-dev/go-job-radar/internal/common/httputil"
	"github.com/remote-radar-dev/go-job-radar/internal/config"
	customerrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

// webhookPayload — тело POST-запроса, которое получает подписанный
// обработчик.
type webhookPayload struct {
	MonitorID   int64     `json:"monitorId"`
	MonitorName string    `json:"monitorName"`
	ChangeType  string    `json:"changeType"`
	Title       string    `json:"title"`
	Company     string    `json:"company,omitempty"`
	URL         string    `json:"url"`
	Location    string    `json:"location,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type WebhookNotifier struct {
	client *resty.Client
	logger *slog.Logger
}

func NewWebhookNotifier(cfg *config.Config, logger *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		client: httputil.CreateResilientHTTPClient(cfg, logger, "webhooks"),
		logger: logger,
	}
}

func (n *WebhookNotifier) Send(ctx context.Context, channel *models.NotificationChannel, update *models.JobUpdate) error {
	if channel.Config.WebhookURL == "" {
		n.logger.Warn("У webhook-канала не задан URL", "channelID", channel.ID)
		return nil
	}

	payload := webhookPayload{
		MonitorID:   update.MonitorID,
		MonitorName: update.MonitorName,
		ChangeType:  string(update.ChangeType),
		Title:       update.Job.Title,
		Company:     update.Job.Company,
		URL:         update.Job.URL,
		Location:    update.Job.Location,
		Tags:        update.Job.Tags,
		OccurredAt:  time.Now(),
	}

	req := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)

	if channel.Config.Secret != "" {
		req.SetHeader("X-Job-Radar-Secret", channel.Config.Secret)
	}

	resp, err := req.Post(channel.Config.WebhookURL)
	if err != nil {
		return fmt.Errorf("ошибка при вызове webhook: %w", err)
	}

	if resp.IsError() {
		return &customerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	n.logger.Info("Уведомление доставлено на webhook",
		"channelID", channel.ID,
		"status", resp.StatusCode(),
	)

	return nil
}
