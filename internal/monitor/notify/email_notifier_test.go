package notify

import (
	"context"
	"io"
	"log/slog"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remote-radar-dev/go-job-radar/internal/config"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

func TestEmailNotifier_Send(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		EmailHost: "smtp.example.com",
		EmailPort: 587,
		EmailFrom: "job-radar@example.com",
	}

	notifier := NewEmailNotifier(cfg, logger)

	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  []byte
	)

	notifier.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotFrom = from
		gotTo = to
		gotMsg = msg

		return nil
	}

	channel := &models.NotificationChannel{
		ID:     1,
		Type:   models.ChannelEmail,
		Config: models.ChannelConfig{Recipients: []string{"dev@example.com", "lead@example.com"}},
	}

	update := &models.JobUpdate{
		MonitorName: "Go вакансии",
		ChangeType:  models.ChangeNew,
		Job: &models.JobRecord{
			Title:   "Backend разработчик",
			Company: "Example",
			URL:     "https://jobs.example.com/1",
		},
	}

	err := notifier.Send(context.Background(), channel, update)

	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "job-radar@example.com", gotFrom)
	assert.Equal(t, []string{"dev@example.com", "lead@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Job Radar: Go вакансии — Backend разработчик")
	assert.Contains(t, string(gotMsg), "https://jobs.example.com/1")
}

func TestEmailNotifier_Send_NoRecipients(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := NewEmailNotifier(&config.Config{}, logger)

	called := false
	notifier.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	channel := &models.NotificationChannel{ID: 1, Type: models.ChannelEmail}
	update := &models.JobUpdate{Job: &models.JobRecord{Title: "x"}}

	err := notifier.Send(context.Background(), channel, update)

	require.NoError(t, err)
	assert.False(t, called, "без получателей письмо не отправляется")
}

func TestFormatUpdate(t *testing.T) {
	t.Parallel()

	update := &models.JobUpdate{
		MonitorName: "Go вакансии",
		ChangeType:  models.ChangeRemoved,
		Job: &models.JobRecord{
			Title:    "Backend разработчик",
			Company:  "Example",
			Location: "Remote",
			Tags:     []string{"go", "postgres"},
			URL:      "https://jobs.example.com/1",
		},
	}

	text := formatUpdate(update)

	assert.Contains(t, text, "Вакансия снята с публикации")
	assert.Contains(t, text, "Backend разработчик")
	assert.Contains(t, text, "Компания: Example")
	assert.Contains(t, text, "Теги: go, postgres")
	assert.Contains(t, text, "Монитор: Go вакансии")
}
