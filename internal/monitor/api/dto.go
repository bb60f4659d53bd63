package api

import (
	"time"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type websiteRequest struct {
	Name      string           `json:"name"`
	URL       string           `json:"url"`
	Type      string           `json:"type"`
	Selectors models.Selectors `json:"selectors"`
	IsActive  *bool            `json:"isActive,omitempty"`
}

type websiteResponse struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	URL       string           `json:"url"`
	Type      string           `json:"type"`
	Selectors models.Selectors `json:"selectors"`
	IsActive  bool             `json:"isActive"`
	CreatedAt time.Time        `json:"createdAt"`
}

func toWebsiteResponse(website *models.Website) websiteResponse {
	return websiteResponse{
		ID:        website.ID,
		Name:      website.Name,
		URL:       website.URL,
		Type:      string(website.Type),
		Selectors: website.Selectors,
		IsActive:  website.IsActive,
		CreatedAt: website.CreatedAt,
	}
}

type monitorRequest struct {
	Name                 string   `json:"name"`
	WebsiteID            int64    `json:"websiteId"`
	CheckIntervalMinutes int      `json:"checkIntervalMinutes"`
	Keywords             []string `json:"keywords,omitempty"`
	ExcludeKeywords      []string `json:"excludeKeywords,omitempty"`
	NotifyOnChange       *bool    `json:"notifyOnChange,omitempty"`
	IsActive             *bool    `json:"isActive,omitempty"`
}

type monitorPatchRequest struct {
	Name                 *string  `json:"name,omitempty"`
	WebsiteID            *int64   `json:"websiteId,omitempty"`
	CheckIntervalMinutes *int     `json:"checkIntervalMinutes,omitempty"`
	Keywords             []string `json:"keywords,omitempty"`
	ExcludeKeywords      []string `json:"excludeKeywords,omitempty"`
	NotifyOnChange       *bool    `json:"notifyOnChange,omitempty"`
	IsActive             *bool    `json:"isActive,omitempty"`
}

func (r *monitorPatchRequest) toPatch() *models.MonitorPatch {
	patch := &models.MonitorPatch{
		Name:            r.Name,
		WebsiteID:       r.WebsiteID,
		Keywords:        r.Keywords,
		ExcludeKeywords: r.ExcludeKeywords,
		NotifyOnChange:  r.NotifyOnChange,
		IsActive:        r.IsActive,
	}

	if r.CheckIntervalMinutes != nil {
		interval := time.Duration(*r.CheckIntervalMinutes) * time.Minute
		patch.CheckInterval = &interval
	}

	return patch
}

type monitorResponse struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	WebsiteID            int64     `json:"websiteId"`
	CheckIntervalMinutes int       `json:"checkIntervalMinutes"`
	Keywords             []string  `json:"keywords,omitempty"`
	ExcludeKeywords      []string  `json:"excludeKeywords,omitempty"`
	IsActive             bool      `json:"isActive"`
	NotifyOnChange       bool      `json:"notifyOnChange"`
	LastCheckAt          time.Time `json:"lastCheckAt"`
}

func toMonitorResponse(monitor *models.Monitor) monitorResponse {
	return monitorResponse{
		ID:                   monitor.ID,
		Name:                 monitor.Name,
		WebsiteID:            monitor.WebsiteID,
		CheckIntervalMinutes: int(monitor.CheckInterval.Minutes()),
		Keywords:             monitor.Keywords,
		ExcludeKeywords:      monitor.ExcludeKeywords,
		IsActive:             monitor.IsActive,
		NotifyOnChange:       monitor.NotifyOnChange,
		LastCheckAt:          monitor.LastCheckAt,
	}
}

type jobResponse struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Company    string     `json:"company,omitempty"`
	URL        string     `json:"url"`
	Location   string     `json:"location,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	PostedDate *time.Time `json:"postedDate,omitempty"`
}

func toJobResponse(job *models.JobRecord) jobResponse {
	resp := jobResponse{
		ID:       job.ID,
		Title:    job.Title,
		Company:  job.Company,
		URL:      job.URL,
		Location: job.Location,
		Tags:     job.Tags,
	}

	if !job.PostedDate.IsZero() {
		resp.PostedDate = &job.PostedDate
	}

	return resp
}

type changeLogResponse struct {
	ID         int64     `json:"id"`
	JobID      int64     `json:"jobId"`
	ChangeType string    `json:"changeType"`
	IsNotified bool      `json:"isNotified"`
	CreatedAt  time.Time `json:"createdAt"`
}

type channelRequest struct {
	Type     string               `json:"type"`
	Name     string               `json:"name"`
	Config   models.ChannelConfig `json:"config"`
	IsActive *bool                `json:"isActive,omitempty"`
}

type channelResponse struct {
	ID       int64                `json:"id"`
	Type     string               `json:"type"`
	Name     string               `json:"name"`
	Config   models.ChannelConfig `json:"config"`
	IsActive bool                 `json:"isActive"`
}

type chatRequest struct {
	ID int64 `json:"id"`
}

type chatResponse struct {
	ID               int64   `json:"id"`
	Monitors         []int64 `json:"monitors,omitempty"`
	NotificationMode string  `json:"notificationMode"`
	DigestTime       string  `json:"digestTime"`
}

type notificationSettingsRequest struct {
	Mode       string `json:"mode"`
	DigestTime string `json:"digestTime,omitempty"`
}
