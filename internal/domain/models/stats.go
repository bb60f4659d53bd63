package models

import "time"

// Stats — сводка по сервису для API и команды /jobs.
type Stats struct {
	Monitors    int       `json:"monitors"`
	ActiveJobs  int       `json:"activeJobs"`
	GeneratedAt time.Time `json:"generatedAt"`
}
