package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/remote-radar-dev/go-job-radar/internal/config"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

// EmailNotifier отправляет уведомления по SMTP. Получатели берутся из
// настроек канала.
type EmailNotifier struct {
	host     string
	port     int
	user     string
	password string
	from     string
	logger   *slog.Logger

	// sendMail подменяется в тестах.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailNotifier(cfg *config.Config, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		host:     cfg.EmailHost,
		port:     cfg.EmailPort,
		user:     cfg.EmailUser,
		password: cfg.EmailPassword,
		from:     cfg.EmailFrom,
		logger:   logger,
		sendMail: smtp.SendMail,
	}
}

func (n *EmailNotifier) Send(ctx context.Context, channel *models.NotificationChannel, update *models.JobUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recipients := channel.Config.Recipients
	if len(recipients) == 0 {
		n.logger.Warn("У email-канала нет получателей", "channelID", channel.ID)
		return nil
	}

	subject := fmt.Sprintf("Job Radar: %s — %s", update.MonitorName, update.Job.Title)
	body := formatUpdate(update)

	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s\r\n", n.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(recipients, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", n.host, n.port)

	var auth smtp.Auth
	if n.user != "" {
		auth = smtp.PlainAuth("", n.user, n.password, n.host)
	}

	if err := n.sendMail(addr, auth, n.from, recipients, []byte(msg.String())); err != nil {
		return fmt.Errorf("ошибка при отправке письма: %w", err)
	}

	n.logger.Info("Уведомление отправлено по почте",
		"channelID", channel.ID,
		"recipients", len(recipients),
	)

	return nil
}
