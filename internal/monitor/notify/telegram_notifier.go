package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

var tokenRe = regexp.MustCompile(`https://api\.telegram\.org/bot([^/\s]+)`)

// TelegramNotifier шлёт сообщения напрямую в Bot API. Токен вырезается
// из текста ошибок, чтобы не утёк в логи.
type TelegramNotifier struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func NewTelegramNotifier(token string, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: fmt.Sprintf("https://api.telegram.org/bot%s", token),
		logger:  logger,
	}
}

func (n *TelegramNotifier) sanitizeError(err error) error {
	if err == nil {
		return nil
	}

	sanitized := tokenRe.ReplaceAllString(err.Error(), "https://api.telegram.org/bot[MASKED_TOKEN]")

	return fmt.Errorf("%s", sanitized)
}

func (n *TelegramNotifier) Send(ctx context.Context, channel *models.NotificationChannel, update *models.JobUpdate) error {
	chatIDs := channel.Config.ChatIDs
	if len(chatIDs) == 0 {
		chatIDs = update.TgChatIDs
	}

	message := formatUpdate(update)

	for _, chatID := range chatIDs {
		if err := n.sendMessage(ctx, chatID, message); err != nil {
			return err
		}
	}

	n.logger.Info("Уведомление отправлено в Telegram",
		"channelID", channel.ID,
		"chats", len(chatIDs),
	)

	return nil
}

func (n *TelegramNotifier) sendMessage(ctx context.Context, chatID int64, text string) error {
	url := fmt.Sprintf("%s/sendMessage", n.baseURL)

	data := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return n.sanitizeError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(jsonData)))
	if err != nil {
		return n.sanitizeError(err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return n.sanitizeError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorResponse struct {
			Description string `json:"description"`
		}

		if err := json.NewDecoder(resp.Body).Decode(&errorResponse); err != nil {
			return fmt.Errorf("ошибка при отправке сообщения: статус %d", resp.StatusCode)
		}

		return fmt.Errorf("ошибка при отправке сообщения: %s", errorResponse.Description)
	}

	return nil
}
