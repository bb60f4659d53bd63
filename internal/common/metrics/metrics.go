package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "job_radar"

	BotSubsystem     = "bot"
	MonitorSubsystem = "monitor"
)

// Общие метрики для всех сервисов.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)
)

// Бот метрики.
var (
	UserMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "user_messages_total",
			Help:      "Total number of user messages processed",
		},
		[]string{"chat_id", "message_type"},
	)

	JobUpdatesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "job_updates_delivered_total",
			Help:      "Total number of job updates delivered to chats",
		},
		[]string{"status"},
	)
)

// Метрики монитора.
var (
	ActiveMonitors = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: MonitorSubsystem,
			Name:      "active_monitors_count",
			Help:      "Number of running monitor loops by site type",
		},
		[]string{"site_type"},
	)

	CrawlRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: MonitorSubsystem,
			Name:      "crawl_request_duration_seconds",
			Help:      "Crawl request duration in seconds (p50, p95, p99)",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		},
		[]string{"site_type", "status"},
	)

	CrawlRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: MonitorSubsystem,
			Name:      "crawl_requests_total",
			Help:      "Total number of crawl requests",
		},
		[]string{"site_type", "status"},
	)

	JobChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: MonitorSubsystem,
			Name:      "job_changes_total",
			Help:      "Total number of detected job changes",
		},
		[]string{"change_type"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: MonitorSubsystem,
			Name:      "notifications_total",
			Help:      "Total number of notification deliveries",
		},
		[]string{"channel_type", "status"},
	)

	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: MonitorSubsystem,
			Name:      "database_queries_total",
			Help:      "Total number of database queries",
		},
		[]string{"operation", "status"},
	)
)

func RecordHTTPRequest(service, method, endpoint string, statusCode int, duration time.Duration) {
	status := "success"
	if statusCode >= 400 {
		status = "error"
	}

	HTTPRequestsTotal.WithLabelValues(service, method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, endpoint).Observe(duration.Seconds())
}

func RecordUserMessage(chatID, messageType string) {
	UserMessagesTotal.WithLabelValues(chatID, messageType).Inc()
}

func RecordJobUpdateDelivery(status string) {
	JobUpdatesDelivered.WithLabelValues(status).Inc()
}

func RecordCrawlRequest(siteType, status string, duration time.Duration) {
	CrawlRequestsTotal.WithLabelValues(siteType, status).Inc()
	CrawlRequestDuration.WithLabelValues(siteType, status).Observe(duration.Seconds())
}

func RecordJobChange(changeType string) {
	JobChangesTotal.WithLabelValues(changeType).Inc()
}

func RecordNotification(channelType, status string) {
	NotificationsTotal.WithLabelValues(channelType, status).Inc()
}

func UpdateActiveMonitorsCount(siteType string, count float64) {
	ActiveMonitors.WithLabelValues(siteType).Set(count)
}

func RecordDatabaseQuery(operation, status string) {
	DatabaseQueriesTotal.WithLabelValues(operation, status).Inc()
}
