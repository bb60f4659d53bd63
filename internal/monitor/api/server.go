package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	customerrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/repository"
)

// MonitorService — операции над мониторами, которые проходят через
// менеджер, а не напрямую через репозиторий: менеджеру нужно управлять
// горутинами.
type MonitorService interface {
	AddMonitor(ctx context.Context, monitor *models.Monitor) error
	UpdateMonitor(ctx context.Context, id int64, patch *models.MonitorPatch) (*models.Monitor, error)
	DeleteMonitor(ctx context.Context, id int64) error
	CheckMonitorNow(ctx context.Context, id int64) error
}

type StatsCache interface {
	GetStats(ctx context.Context) (*models.Stats, error)
	SetStats(ctx context.Context, stats *models.Stats) error
}

type Server struct {
	service       MonitorService
	websiteRepo   repository.WebsiteRepository
	monitorRepo   repository.MonitorRepository
	jobRepo       repository.JobRepository
	changeLogRepo repository.ChangeLogRepository
	channelRepo   repository.ChannelRepository
	chatRepo      repository.ChatRepository
	statsCache    StatsCache
	logger        *slog.Logger
	mux           *http.ServeMux
}

func NewServer(
	service MonitorService,
	websiteRepo repository.WebsiteRepository,
	monitorRepo repository.MonitorRepository,
	jobRepo repository.JobRepository,
	changeLogRepo repository.ChangeLogRepository,
	channelRepo repository.ChannelRepository,
	chatRepo repository.ChatRepository,
	statsCache StatsCache,
	logger *slog.Logger,
) *Server {
	srv := &Server{
		service:       service,
		websiteRepo:   websiteRepo,
		monitorRepo:   monitorRepo,
		jobRepo:       jobRepo,
		changeLogRepo: changeLogRepo,
		channelRepo:   channelRepo,
		chatRepo:      chatRepo,
		statsCache:    statsCache,
		logger:        logger,
		mux:           http.NewServeMux(),
	}
	srv.routes()

	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.HandleFunc("GET /api/websites", s.handleListWebsites)
	s.mux.HandleFunc("POST /api/websites", s.handleAddWebsite)

	s.mux.HandleFunc("GET /api/monitors", s.handleListMonitors)
	s.mux.HandleFunc("POST /api/monitors", s.handleAddMonitor)
	s.mux.HandleFunc("GET /api/monitors/{id}", s.handleGetMonitor)
	s.mux.HandleFunc("PATCH /api/monitors/{id}", s.handleUpdateMonitor)
	s.mux.HandleFunc("DELETE /api/monitors/{id}", s.handleDeleteMonitor)
	s.mux.HandleFunc("POST /api/monitors/{id}/check", s.handleCheckMonitor)
	s.mux.HandleFunc("GET /api/monitors/{id}/jobs", s.handleListJobs)
	s.mux.HandleFunc("GET /api/monitors/{id}/changelog", s.handleChangeLog)
	s.mux.HandleFunc("POST /api/monitors/{id}/channels/{channelID}", s.handleAttachChannel)

	s.mux.HandleFunc("GET /api/channels", s.handleListChannels)
	s.mux.HandleFunc("POST /api/channels", s.handleAddChannel)

	s.mux.HandleFunc("POST /api/chats", s.handleRegisterChat)
	s.mux.HandleFunc("GET /api/chats/{id}", s.handleGetChat)
	s.mux.HandleFunc("DELETE /api/chats/{id}", s.handleDeleteChat)
	s.mux.HandleFunc("POST /api/chats/{id}/monitors/{monitorID}", s.handleSubscribe)
	s.mux.HandleFunc("DELETE /api/chats/{id}/monitors/{monitorID}", s.handleUnsubscribe)
	s.mux.HandleFunc("PATCH /api/chats/{id}/notifications", s.handleNotificationSettings)

	s.mux.HandleFunc("GET /api/stats", s.handleStats)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListWebsites(w http.ResponseWriter, r *http.Request) {
	websites, err := s.websiteRepo.GetAll(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]websiteResponse, 0, len(websites))
	for _, website := range websites {
		resp = append(resp, toWebsiteResponse(website))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddWebsite(w http.ResponseWriter, r *http.Request) {
	var req websiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &customerrors.ErrBadRequest{Message: "некорректное тело запроса"})
		return
	}

	if req.Name == "" {
		s.writeError(w, &customerrors.ErrMissingRequiredField{FieldName: "name"})
		return
	}

	if parsed, err := url.Parse(req.URL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		s.writeError(w, &customerrors.ErrInvalidURL{URL: req.URL})
		return
	}

	siteType := models.SiteType(req.Type)
	switch siteType {
	case models.SiteHTML, models.SiteRSS, models.SiteRemotive:
	default:
		s.writeError(w, &customerrors.ErrUnsupportedSiteType{Type: req.Type})
		return
	}

	website := &models.Website{
		Name:      req.Name,
		URL:       req.URL,
		Type:      siteType,
		Selectors: req.Selectors,
		IsActive:  true,
	}
	if req.IsActive != nil {
		website.IsActive = *req.IsActive
	}

	if err := s.websiteRepo.Save(r.Context(), website); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("Площадка добавлена", "id", website.ID, "url", website.URL)
	writeJSON(w, http.StatusCreated, toWebsiteResponse(website))
}

func (s *Server) handleListMonitors(w http.ResponseWriter, r *http.Request) {
	monitors, err := s.monitorRepo.GetAll(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]monitorResponse, 0, len(monitors))
	for _, monitor := range monitors {
		resp = append(resp, toMonitorResponse(monitor))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddMonitor(w http.ResponseWriter, r *http.Request) {
	var req monitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &customerrors.ErrBadRequest{Message: "некорректное тело запроса"})
		return
	}

	if req.Name == "" {
		s.writeError(w, &customerrors.ErrMissingRequiredField{FieldName: "name"})
		return
	}

	if req.CheckIntervalMinutes <= 0 {
		s.writeError(w, &customerrors.ErrInvalidValue{
			FieldName: "checkIntervalMinutes",
			Value:     strconv.Itoa(req.CheckIntervalMinutes),
		})

		return
	}

	monitor := &models.Monitor{
		Name:            req.Name,
		WebsiteID:       req.WebsiteID,
		CheckInterval:   time.Duration(req.CheckIntervalMinutes) * time.Minute,
		Keywords:        req.Keywords,
		ExcludeKeywords: req.ExcludeKeywords,
		IsActive:        true,
		NotifyOnChange:  true,
	}
	if req.IsActive != nil {
		monitor.IsActive = *req.IsActive
	}

	if req.NotifyOnChange != nil {
		monitor.NotifyOnChange = *req.NotifyOnChange
	}

	if err := s.service.AddMonitor(r.Context(), monitor); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("Монитор добавлен", "id", monitor.ID, "name", monitor.Name)
	writeJSON(w, http.StatusCreated, toMonitorResponse(monitor))
}

func (s *Server) handleGetMonitor(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	monitor, err := s.monitorRepo.FindByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMonitorResponse(monitor))
}

func (s *Server) handleUpdateMonitor(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	var req monitorPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &customerrors.ErrBadRequest{Message: "некорректное тело запроса"})
		return
	}

	if req.CheckIntervalMinutes != nil && *req.CheckIntervalMinutes <= 0 {
		s.writeError(w, &customerrors.ErrInvalidValue{
			FieldName: "checkIntervalMinutes",
			Value:     strconv.Itoa(*req.CheckIntervalMinutes),
		})

		return
	}

	monitor, err := s.service.UpdateMonitor(r.Context(), id, req.toPatch())
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMonitorResponse(monitor))
}

func (s *Server) handleDeleteMonitor(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.service.DeleteMonitor(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("Монитор удалён", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "монитор удалён"})
}

func (s *Server) handleCheckMonitor(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.service.CheckMonitorNow(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "проверка выполнена"})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	jobs, err := s.jobRepo.FindByMonitorID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, toJobResponse(job))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChangeLog(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := s.changeLogRepo.FindByMonitorID(r.Context(), id, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]changeLogResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, changeLogResponse{
			ID:         entry.ID,
			JobID:      entry.JobID,
			ChangeType: string(entry.ChangeType),
			IsNotified: entry.IsNotified,
			CreatedAt:  entry.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.channelRepo.GetAll(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]channelResponse, 0, len(channels))
	for _, channel := range channels {
		resp = append(resp, channelResponse{
			ID:       channel.ID,
			Type:     string(channel.Type),
			Name:     channel.Name,
			Config:   channel.Config,
			IsActive: channel.IsActive,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddChannel(w http.ResponseWriter, r *http.Request) {
	var req channelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &customerrors.ErrBadRequest{Message: "некорректное тело запроса"})
		return
	}

	channelType := models.ChannelType(req.Type)
	switch channelType {
	case models.ChannelEmail, models.ChannelTelegram, models.ChannelWebhook:
	default:
		s.writeError(w, &customerrors.ErrUnknownChannelType{Type: req.Type})
		return
	}

	channel := &models.NotificationChannel{
		Type:     channelType,
		Name:     req.Name,
		Config:   req.Config,
		IsActive: true,
	}
	if req.IsActive != nil {
		channel.IsActive = *req.IsActive
	}

	if err := s.channelRepo.Save(r.Context(), channel); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("Канал уведомлений добавлен", "id", channel.ID, "type", channel.Type)
	writeJSON(w, http.StatusCreated, channelResponse{
		ID:       channel.ID,
		Type:     string(channel.Type),
		Name:     channel.Name,
		Config:   channel.Config,
		IsActive: channel.IsActive,
	})
}

func (s *Server) handleAttachChannel(w http.ResponseWriter, r *http.Request) {
	monitorID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	channelID, ok := s.pathID(w, r, "channelID")
	if !ok {
		return
	}

	if _, err := s.monitorRepo.FindByID(r.Context(), monitorID); err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.channelRepo.FindByID(r.Context(), channelID); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.channelRepo.AttachToMonitor(r.Context(), monitorID, channelID); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "канал привязан"})
}

func (s *Server) handleRegisterChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		s.writeError(w, &customerrors.ErrBadRequest{Message: "некорректное тело запроса"})
		return
	}

	chat := &models.Chat{
		ID:               req.ID,
		NotificationMode: models.NotificationModeInstant,
	}

	if err := s.chatRepo.Save(r.Context(), chat); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("Чат зарегистрирован", "chatID", chat.ID)
	writeJSON(w, http.StatusCreated, toChatResponse(chat))
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	chat, err := s.chatRepo.FindByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toChatResponse(chat))
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.chatRepo.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "чат удалён"})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	monitorID, ok := s.pathID(w, r, "monitorID")
	if !ok {
		return
	}

	if _, err := s.chatRepo.FindByID(r.Context(), chatID); err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.monitorRepo.FindByID(r.Context(), monitorID); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.chatRepo.AddMonitor(r.Context(), chatID, monitorID); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "подписка оформлена"})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	monitorID, ok := s.pathID(w, r, "monitorID")
	if !ok {
		return
	}

	if err := s.chatRepo.RemoveMonitor(r.Context(), chatID, monitorID); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "подписка отменена"})
}

func (s *Server) handleNotificationSettings(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	var req notificationSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &customerrors.ErrBadRequest{Message: "некорректное тело запроса"})
		return
	}

	mode := models.NotificationMode(req.Mode)
	if mode != models.NotificationModeInstant && mode != models.NotificationModeDigest {
		s.writeError(w, &customerrors.ErrUnknownNotificationMode{Mode: req.Mode})
		return
	}

	digestTime := time.Date(0, 1, 1, 10, 0, 0, 0, time.UTC)

	if req.DigestTime != "" {
		parsed, err := time.Parse("15:04", req.DigestTime)
		if err != nil {
			s.writeError(w, &customerrors.ErrInvalidValue{FieldName: "digestTime", Value: req.DigestTime})
			return
		}

		digestTime = parsed
	}

	if err := s.chatRepo.UpdateNotificationSettings(r.Context(), chatID, mode, digestTime); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "настройки обновлены"})
}

// handleStats отдаёт сводку, пересчитывая её только когда кэш пуст.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.statsCache != nil {
		if stats, err := s.statsCache.GetStats(ctx); err == nil && stats != nil {
			writeJSON(w, http.StatusOK, stats)
			return
		}
	}

	monitors, err := s.monitorRepo.Count(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	activeJobs, err := s.jobRepo.CountActive(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	stats := &models.Stats{
		Monitors:    monitors,
		ActiveJobs:  activeJobs,
		GeneratedAt: time.Now(),
	}

	if s.statsCache != nil {
		if err := s.statsCache.SetStats(ctx, stats); err != nil {
			s.logger.Warn("Не удалось закэшировать статистику", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, stats)
}

func toChatResponse(chat *models.Chat) chatResponse {
	return chatResponse{
		ID:               chat.ID,
		Monitors:         chat.Monitors,
		NotificationMode: string(chat.NotificationMode),
		DigestTime:       chat.DigestTime.Format("15:04"),
	}
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		s.writeError(w, &customerrors.ErrInvalidValue{FieldName: name, Value: r.PathValue(name)})
		return 0, false
	}

	return id, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var (
		monitorNotFound *customerrors.ErrMonitorNotFound
		websiteNotFound *customerrors.ErrWebsiteNotFound
		channelNotFound *customerrors.ErrChannelNotFound
		chatNotFound    *customerrors.ErrChatNotFound
		jobNotFound     *customerrors.ErrJobNotFound
		websiteExists   *customerrors.ErrWebsiteAlreadyExists
		chatExists      *customerrors.ErrChatAlreadyExists
		badRequest      *customerrors.ErrBadRequest
		invalidURL      *customerrors.ErrInvalidURL
		missingField    *customerrors.ErrMissingRequiredField
		unsupportedType *customerrors.ErrUnsupportedSiteType
	)

	switch {
	case errors.As(err, &monitorNotFound), errors.As(err, &websiteNotFound),
		errors.As(err, &channelNotFound), errors.As(err, &chatNotFound),
		errors.As(err, &jobNotFound):
		status = http.StatusNotFound
	case errors.As(err, &websiteExists), errors.As(err, &chatExists):
		status = http.StatusConflict
	case errors.As(err, &badRequest), errors.As(err, &invalidURL),
		errors.As(err, &missingField), errors.As(err, &unsupportedType),
		errors.Is(err, &customerrors.ErrInvalidValue{}),
		errors.Is(err, &customerrors.ErrUnknownChannelType{}),
		errors.Is(err, &customerrors.ErrUnknownNotificationMode{}):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Ошибка обработки запроса", "error", err)
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(data)
}
