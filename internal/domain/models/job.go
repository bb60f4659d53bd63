package models

import "time"

type ChangeType string

const (
	ChangeNew     ChangeType = "new"
	ChangeUpdated ChangeType = "updated"
	ChangeRemoved ChangeType = "removed"
)

// JobRecord — вакансия, найденная монитором. URL служит естественным
// ключом дедупликации внутри одного монитора.
type JobRecord struct {
	ID         int64
	MonitorID  int64
	Title      string
	Company    string
	URL        string
	Location   string
	Tags       []string
	PostedDate time.Time
	RawData    string
	IsRemoved  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (j *JobRecord) SearchText() string {
	return j.Title + " " + j.Company + " " + j.RawData
}

type ChangeLogEntry struct {
	ID         int64
	MonitorID  int64
	JobID      int64
	ChangeType ChangeType
	OldData    string
	NewData    string
	IsNotified bool
	CreatedAt  time.Time
}

// JobUpdate — событие об изменении вакансии, передаваемое нотификаторам
// и боту.
type JobUpdate struct {
	MonitorID   int64
	MonitorName string
	ChangeType  ChangeType
	Job         *JobRecord
	Description string
	TgChatIDs   []int64
}

func TextPreview(text string, length int) string {
	if len(text) <= length {
		return text
	}

	return text[:length] + "..."
}
