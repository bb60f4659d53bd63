package crawler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/remote-radar-dev/go-job-radar/internal/config"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/crawler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boardHTML = `<!DOCTYPE html>
<html><body>
<div class="jobs">
  <div class="job-card">
    <h3 class="job-title">Go Developer</h3>
    <span class="company">Initech</span>
    <span class="location">Remote, Europe</span>
    <a class="job-link" href="/jobs/go-developer-1">View</a>
    <span class="tag">golang</span>
    <span class="tag">kubernetes</span>
  </div>
  <div class="job-card">
    <h3 class="job-title">Python Developer</h3>
    <span class="company">Acme</span>
    <span class="location">Remote</span>
    <a class="job-link" href="/jobs/python-developer-2">View</a>
  </div>
  <div class="job-card">
    <h3 class="job-title"></h3>
    <a class="job-link" href="/jobs/broken">View</a>
  </div>
</div>
</body></html>`

func testConfig() *config.Config {
	return &config.Config{
		ExternalRequestTimeout:     5 * time.Second,
		RetryCount:                 1,
		RetryBackoff:               10 * time.Millisecond,
		RetryableStatusCodes:       []int{500, 502, 503, 504},
		CBSlidingWindowSize:        100,
		CBMinimumRequiredCalls:     100,
		CBFailureRateThreshold:     100,
		CBPermittedCallsInHalfOpen: 1,
		CBWaitDurationInOpenState:  time.Second,
	}
}

func testSelectors() models.Selectors {
	return models.Selectors{
		Job:      "div.job-card",
		Title:    "h3.job-title",
		Company:  "span.company",
		Location: "span.location",
		URL:      "a.job-link",
		Tags:     "span.tag",
	}
}

func TestHTMLParser_ParseJobs(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(boardHTML))
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	parser := crawler.NewHTMLParser(testConfig(), logger)

	website := &models.Website{
		ID:        1,
		Name:      "Test Board",
		URL:       server.URL,
		Type:      models.SiteHTML,
		Selectors: testSelectors(),
	}

	jobs, err := parser.ParseJobs(context.Background(), website)

	require.NoError(t, err)
	require.Len(t, jobs, 2, "Карточка без названия должна быть пропущена")

	assert.Equal(t, "Go Developer", jobs[0].Title)
	assert.Equal(t, "Initech", jobs[0].Company)
	assert.Equal(t, "Remote, Europe", jobs[0].Location)
	assert.Equal(t, server.URL+"/jobs/go-developer-1", jobs[0].URL)
	assert.ElementsMatch(t, []string{"golang", "kubernetes"}, jobs[0].Tags)

	assert.Equal(t, "Python Developer", jobs[1].Title)
	assert.Empty(t, jobs[1].Tags)
}

func TestHTMLParser_ParseJobs_MissingJobSelector(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(boardHTML))
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	parser := crawler.NewHTMLParser(testConfig(), logger)

	website := &models.Website{
		URL:  server.URL,
		Type: models.SiteHTML,
	}

	_, err := parser.ParseJobs(context.Background(), website)

	require.Error(t, err)
}

func TestHTMLParser_FetchDetails(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/go-developer-1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Full job description here</p></body></html>`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	parser := crawler.NewHTMLParser(testConfig(), logger)

	website := &models.Website{URL: server.URL, Type: models.SiteHTML}
	job := &models.JobRecord{URL: server.URL + "/jobs/go-developer-1"}

	err := parser.FetchDetails(context.Background(), website, job)

	require.NoError(t, err)
	assert.Contains(t, job.RawData, "Full job description here")
	assert.False(t, job.PostedDate.IsZero())
}
