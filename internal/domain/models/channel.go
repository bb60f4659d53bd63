package models

import "time"

type ChannelType string

const (
	ChannelEmail    ChannelType = "email"
	ChannelTelegram ChannelType = "telegram"
	ChannelWebhook  ChannelType = "webhook"
)

// ChannelConfig — настройки доставки конкретного канала. Заполняются
// только поля, относящиеся к его типу.
type ChannelConfig struct {
	Recipients []string `json:"recipients,omitempty"`
	ChatIDs    []int64  `json:"chatIds,omitempty"`
	WebhookURL string   `json:"webhookUrl,omitempty"`
	Secret     string   `json:"secret,omitempty"`
}

type NotificationChannel struct {
	ID        int64
	Type      ChannelType
	Name      string
	Config    ChannelConfig
	IsActive  bool
	CreatedAt time.Time
}
