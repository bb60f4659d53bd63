package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/remote-radar-dev/go-job-radar/internal/common/httputil"
	"github.com/remote-radar-dev/go-job-radar/internal/config"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

// RemotiveParser получает вакансии из публичного API Remotive.
type RemotiveParser struct {
	client  *resty.Client
	baseURL string
	logger  *slog.Logger
}

func NewRemotiveParser(baseURL string, cfg *config.Config, logger *slog.Logger) *RemotiveParser {
	if baseURL == "" {
		baseURL = "https://remotive.com/api"
	}

	client := httputil.CreateResilientHTTPClient(cfg, logger, "remotive")

	return &RemotiveParser{
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

type remotiveJob struct {
	ID             int64    `json:"id"`
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	CompanyName    string   `json:"company_name"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`
	CandidateLoc   string   `json:"candidate_required_location"`
	PublicationDat string   `json:"publication_date"`
	Description    string   `json:"description"`
}

type remotiveResponse struct {
	JobCount int           `json:"job-count"`
	Jobs     []remotiveJob `json:"jobs"`
}

func (p *RemotiveParser) ParseJobs(ctx context.Context, website *models.Website) ([]*models.JobRecord, error) {
	url := p.baseURL + "/remote-jobs"

	var response remotiveResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&response).
		Get(url)
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("Remotive API вернул статус: %d", resp.StatusCode())
	}

	jobs := make([]*models.JobRecord, 0, len(response.Jobs))

	for _, rj := range response.Jobs {
		if rj.URL == "" {
			continue
		}

		job := &models.JobRecord{
			Title:    rj.Title,
			Company:  rj.CompanyName,
			URL:      rj.URL,
			Location: rj.CandidateLoc,
			Tags:     rj.Tags,
			RawData:  rj.Description,
		}

		if posted, err := time.Parse("2006-01-02T15:04:05", rj.PublicationDat); err == nil {
			job.PostedDate = posted
		}

		jobs = append(jobs, job)
	}

	p.logger.Debug("Ответ Remotive разобран",
		"website", website.Name,
		"jobs", len(jobs),
	)

	return jobs, nil
}
