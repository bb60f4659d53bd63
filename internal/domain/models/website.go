package models

import (
	"time"
)

type SiteType string

const (
	SiteHTML     SiteType = "html"
	SiteRSS      SiteType = "rss"
	SiteRemotive SiteType = "remotive"
	SiteUnknown  SiteType = "unknown"
)

// Selectors задают CSS-селекторы для HTML-площадок.
// Для RSS и API-площадок поля остаются пустыми.
type Selectors struct {
	Job      string `json:"job"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
	Tags     string `json:"tags"`
}

type Website struct {
	ID        int64
	Name      string
	URL       string
	Type      SiteType
	Selectors Selectors
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
