package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/remote-radar-dev/go-job-radar/internal/common/metrics"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

// Parser переводит описание площадки в список вакансий.
// Одна реализация на семейство площадок.
type Parser interface {
	ParseJobs(ctx context.Context, website *models.Website) ([]*models.JobRecord, error)
}

// DetailFetcher — необязательная способность парсера дозагружать полное
// описание вакансии по её URL.
type DetailFetcher interface {
	FetchDetails(ctx context.Context, website *models.Website, job *models.JobRecord) error
}

type JobCrawler struct {
	parsers map[models.SiteType]Parser
	logger  *slog.Logger
}

func NewJobCrawler(htmlParser, rssParser, remotiveParser Parser, logger *slog.Logger) *JobCrawler {
	return &JobCrawler{
		parsers: map[models.SiteType]Parser{
			models.SiteHTML:     htmlParser,
			models.SiteRSS:      rssParser,
			models.SiteRemotive: remotiveParser,
		},
		logger: logger,
	}
}

func (c *JobCrawler) GetJobsFromWebsite(
	ctx context.Context,
	website *models.Website,
	keywords, excludeKeywords []string,
) ([]*models.JobRecord, error) {
	parser, ok := c.parsers[website.Type]
	if !ok {
		return nil, &errors.ErrUnsupportedSiteType{Type: string(website.Type)}
	}

	start := time.Now()

	jobs, err := parser.ParseJobs(ctx, website)
	if err != nil {
		metrics.RecordCrawlRequest(string(website.Type), "error", time.Since(start))

		return nil, &errors.ErrCrawlFailed{WebsiteURL: website.URL, Cause: err}
	}

	metrics.RecordCrawlRequest(string(website.Type), "success", time.Since(start))

	c.logger.Info("Площадка обработана",
		"website", website.Name,
		"url", website.URL,
		"jobs", len(jobs),
	)

	return FilterJobsByKeywords(jobs, keywords, excludeKeywords), nil
}

// GetJobDetails дозагружает полное описание вакансии, если парсер
// площадки это умеет. Для API- и RSS-площадок описание уже получено
// при обходе.
func (c *JobCrawler) GetJobDetails(ctx context.Context, website *models.Website, job *models.JobRecord) error {
	parser, ok := c.parsers[website.Type]
	if !ok {
		return &errors.ErrUnsupportedSiteType{Type: string(website.Type)}
	}

	if fetcher, ok := parser.(DetailFetcher); ok {
		return fetcher.FetchDetails(ctx, website, job)
	}

	return nil
}
