package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/remote-radar-dev/go-job-radar/internal/common/httputil"
	"github.com/remote-radar-dev/go-job-radar/internal/config"
	domainerrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

// MonitorClient — HTTP клиент сервиса мониторинга. Ходит в его REST API
// через устойчивый клиент с ретраями и circuit breaker.
type MonitorClient struct {
	client  *resty.Client
	baseURL string
}

func NewMonitorClient(baseURL string, cfg *config.Config, logger *slog.Logger) *MonitorClient {
	if baseURL == "" {
		baseURL = "http://job_radar_monitor:8081"
	}

	client := httputil.CreateResilientHTTPClient(cfg, logger, "monitor_service")

	return &MonitorClient{
		client:  client,
		baseURL: baseURL,
	}
}

type monitorDTO struct {
	ID                   int64    `json:"id"`
	Name                 string   `json:"name"`
	WebsiteID            int64    `json:"websiteId"`
	CheckIntervalMinutes int      `json:"checkIntervalMinutes"`
	Keywords             []string `json:"keywords"`
	ExcludeKeywords      []string `json:"excludeKeywords"`
	IsActive             bool     `json:"isActive"`
}

type websiteDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

type jobDTO struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	URL      string   `json:"url"`
	Location string   `json:"location"`
	Tags     []string `json:"tags"`
}

type chatDTO struct {
	ID               int64   `json:"id"`
	Monitors         []int64 `json:"monitors"`
	NotificationMode string  `json:"notificationMode"`
	DigestTime       string  `json:"digestTime"`
}

func toMonitor(dto *monitorDTO) *models.Monitor {
	return &models.Monitor{
		ID:              dto.ID,
		Name:            dto.Name,
		WebsiteID:       dto.WebsiteID,
		CheckInterval:   time.Duration(dto.CheckIntervalMinutes) * time.Minute,
		Keywords:        dto.Keywords,
		ExcludeKeywords: dto.ExcludeKeywords,
		IsActive:        dto.IsActive,
	}
}

func (c *MonitorClient) RegisterChat(ctx context.Context, chatID int64) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]int64{"id": chatID}).
		Post(c.baseURL + "/api/chats")
	if err != nil {
		return fmt.Errorf("не удалось зарегистрировать чат: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusCreated, http.StatusOK:
		return nil
	case http.StatusConflict:
		return &domainerrors.ErrChatAlreadyExists{ChatID: chatID}
	default:
		return &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}
}

func (c *MonitorClient) DeleteChat(ctx context.Context, chatID int64) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("%s/api/chats/%d", c.baseURL, chatID))
	if err != nil {
		return fmt.Errorf("не удалось удалить чат: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return &domainerrors.ErrChatNotFound{ChatID: chatID}
	default:
		return &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}
}

func (c *MonitorClient) GetChat(ctx context.Context, chatID int64) (*models.Chat, error) {
	var dto chatDTO

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&dto).
		Get(fmt.Sprintf("%s/api/chats/%d", c.baseURL, chatID))
	if err != nil {
		return nil, fmt.Errorf("не удалось получить чат: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &domainerrors.ErrChatNotFound{ChatID: chatID}
	default:
		return nil, &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	chat := &models.Chat{
		ID:               dto.ID,
		Monitors:         dto.Monitors,
		NotificationMode: models.NotificationMode(dto.NotificationMode),
	}

	if dto.DigestTime != "" {
		if parsed, parseErr := time.Parse("15:04", dto.DigestTime); parseErr == nil {
			chat.DigestTime = parsed
		}
	}

	return chat, nil
}

func (c *MonitorClient) GetWebsites(ctx context.Context) ([]*models.Website, error) {
	var dtos []websiteDTO

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&dtos).
		Get(c.baseURL + "/api/websites")
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список площадок: %w", err)
	}

	if resp.IsError() {
		return nil, &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	websites := make([]*models.Website, 0, len(dtos))
	for i := range dtos {
		websites = append(websites, &models.Website{
			ID:   dtos[i].ID,
			Name: dtos[i].Name,
			URL:  dtos[i].URL,
			Type: models.SiteType(dtos[i].Type),
		})
	}

	return websites, nil
}

func (c *MonitorClient) CreateMonitor(ctx context.Context, monitor *models.Monitor) (*models.Monitor, error) {
	var dto monitorDTO

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"name":                 monitor.Name,
			"websiteId":            monitor.WebsiteID,
			"checkIntervalMinutes": int(monitor.CheckInterval.Minutes()),
			"keywords":             monitor.Keywords,
			"excludeKeywords":      monitor.ExcludeKeywords,
		}).
		SetResult(&dto).
		Post(c.baseURL + "/api/monitors")
	if err != nil {
		return nil, fmt.Errorf("не удалось создать монитор: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusCreated:
		return toMonitor(&dto), nil
	case http.StatusNotFound:
		return nil, &domainerrors.ErrWebsiteNotFound{ID: monitor.WebsiteID}
	case http.StatusBadRequest:
		return nil, &domainerrors.ErrInvalidValue{FieldName: "monitor", Value: monitor.Name}
	default:
		return nil, &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}
}

func (c *MonitorClient) GetMonitors(ctx context.Context) ([]*models.Monitor, error) {
	var dtos []monitorDTO

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&dtos).
		Get(c.baseURL + "/api/monitors")
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список мониторов: %w", err)
	}

	if resp.IsError() {
		return nil, &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	monitors := make([]*models.Monitor, 0, len(dtos))
	for i := range dtos {
		monitors = append(monitors, toMonitor(&dtos[i]))
	}

	return monitors, nil
}

func (c *MonitorClient) Subscribe(ctx context.Context, chatID, monitorID int64) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Post(fmt.Sprintf("%s/api/chats/%d/monitors/%d", c.baseURL, chatID, monitorID))
	if err != nil {
		return fmt.Errorf("не удалось оформить подписку: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return &domainerrors.ErrMonitorNotFound{ID: monitorID}
	default:
		return &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}
}

func (c *MonitorClient) Unsubscribe(ctx context.Context, chatID, monitorID int64) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("%s/api/chats/%d/monitors/%d", c.baseURL, chatID, monitorID))
	if err != nil {
		return fmt.Errorf("не удалось отменить подписку: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return &domainerrors.ErrMonitorNotFound{ID: monitorID}
	default:
		return &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}
}

func (c *MonitorClient) GetJobs(ctx context.Context, monitorID int64) ([]*models.JobRecord, error) {
	var dtos []jobDTO

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&dtos).
		Get(fmt.Sprintf("%s/api/monitors/%d/jobs", c.baseURL, monitorID))
	if err != nil {
		return nil, fmt.Errorf("не удалось получить вакансии: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &domainerrors.ErrMonitorNotFound{ID: monitorID}
	default:
		return nil, &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	jobs := make([]*models.JobRecord, 0, len(dtos))
	for i := range dtos {
		jobs = append(jobs, &models.JobRecord{
			ID:       dtos[i].ID,
			Title:    dtos[i].Title,
			Company:  dtos[i].Company,
			URL:      dtos[i].URL,
			Location: dtos[i].Location,
			Tags:     dtos[i].Tags,
		})
	}

	return jobs, nil
}

func (c *MonitorClient) CheckNow(ctx context.Context, monitorID int64) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Post(fmt.Sprintf("%s/api/monitors/%d/check", c.baseURL, monitorID))
	if err != nil {
		return fmt.Errorf("не удалось запустить проверку: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return &domainerrors.ErrMonitorNotFound{ID: monitorID}
	default:
		return &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}
}

func (c *MonitorClient) UpdateNotificationSettings(ctx context.Context, chatID int64, mode models.NotificationMode,
	digestTime time.Time) error {
	body := map[string]any{"mode": string(mode)}
	if mode == models.NotificationModeDigest && !digestTime.IsZero() {
		body["digestTime"] = digestTime.Format("15:04")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Patch(fmt.Sprintf("%s/api/chats/%d/notifications", c.baseURL, chatID))
	if err != nil {
		return fmt.Errorf("не удалось обновить настройки уведомлений: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return &domainerrors.ErrChatNotFound{ChatID: chatID}
	case http.StatusBadRequest:
		return &domainerrors.ErrUnknownNotificationMode{Mode: string(mode)}
	default:
		return &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}
}
