package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/remote-radar-dev/go-job-radar/internal/common/httputil"
	"github.com/remote-radar-dev/go-job-radar/internal/config"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

// HTMLParser обходит площадки, заданные CSS-селекторами.
type HTMLParser struct {
	client *resty.Client
	logger *slog.Logger
}

func NewHTMLParser(cfg *config.Config, logger *slog.Logger) *HTMLParser {
	client := httputil.CreateResilientHTTPClient(cfg, logger, "html_boards")

	return &HTMLParser{
		client: client,
		logger: logger,
	}
}

func (p *HTMLParser) ParseJobs(ctx context.Context, website *models.Website) ([]*models.JobRecord, error) {
	doc, err := p.fetchDocument(ctx, website.URL)
	if err != nil {
		return nil, err
	}

	sel := website.Selectors
	if sel.Job == "" {
		return nil, &errors.ErrMissingRequiredField{FieldName: "selectors.job"}
	}

	var jobs []*models.JobRecord

	doc.Find(sel.Job).Each(func(_ int, s *goquery.Selection) {
		job := &models.JobRecord{
			Title:    strings.TrimSpace(s.Find(sel.Title).First().Text()),
			Company:  strings.TrimSpace(s.Find(sel.Company).First().Text()),
			Location: strings.TrimSpace(s.Find(sel.Location).First().Text()),
		}

		href, _ := s.Find(sel.URL).First().Attr("href")
		if href == "" {
			href, _ = s.Attr("href")
		}

		job.URL = resolveURL(website.URL, href)

		if sel.Tags != "" {
			s.Find(sel.Tags).Each(func(_ int, tag *goquery.Selection) {
				if text := strings.TrimSpace(tag.Text()); text != "" {
					job.Tags = append(job.Tags, text)
				}
			})
		}

		if job.URL == "" || job.Title == "" {
			p.logger.Debug("Пропущена карточка без URL или названия",
				"website", website.Name,
			)

			return
		}

		jobs = append(jobs, job)
	})

	return jobs, nil
}

// FetchDetails загружает страницу вакансии и сохраняет её текст как
// полное описание.
func (p *HTMLParser) FetchDetails(ctx context.Context, website *models.Website, job *models.JobRecord) error {
	doc, err := p.fetchDocument(ctx, job.URL)
	if err != nil {
		return err
	}

	body := strings.TrimSpace(doc.Find("body").Text())
	job.RawData = models.TextPreview(body, 4000)

	if job.PostedDate.IsZero() {
		job.PostedDate = time.Now()
	}

	return nil
}

func (p *HTMLParser) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html").
		Get(pageURL)
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("площадка вернула статус: %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, &errors.ErrParseFailed{WebsiteURL: pageURL, Cause: err}
	}

	return doc, nil
}

func resolveURL(baseURL, href string) string {
	if href == "" {
		return ""
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}

	return base.ResolveReference(ref).String()
}
