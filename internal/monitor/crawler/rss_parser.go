package crawler

import (
	"context"
	"log/slog"

	"github.com/mmcdole/gofeed"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

// RSSParser обходит площадки, отдающие вакансии через RSS/Atom ленты.
type RSSParser struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

func NewRSSParser(logger *slog.Logger) *RSSParser {
	return &RSSParser{
		parser: gofeed.NewParser(),
		logger: logger,
	}
}

func (p *RSSParser) ParseJobs(ctx context.Context, website *models.Website) ([]*models.JobRecord, error) {
	feed, err := p.parser.ParseURLWithContext(website.URL, ctx)
	if err != nil {
		return nil, err
	}

	jobs := make([]*models.JobRecord, 0, len(feed.Items))

	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}

		job := &models.JobRecord{
			Title:   item.Title,
			URL:     item.Link,
			Tags:    item.Categories,
			RawData: item.Description,
		}

		if item.Author != nil {
			job.Company = item.Author.Name
		}

		if item.PublishedParsed != nil {
			job.PostedDate = *item.PublishedParsed
		}

		jobs = append(jobs, job)
	}

	p.logger.Debug("Лента разобрана",
		"website", website.Name,
		"items", len(feed.Items),
	)

	return jobs, nil
}
