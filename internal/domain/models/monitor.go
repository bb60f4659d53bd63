package models

import (
	"time"
)

type Monitor struct {
	ID              int64
	Name            string
	WebsiteID       int64
	CheckInterval   time.Duration
	Keywords        []string
	ExcludeKeywords []string
	IsActive        bool
	NotifyOnChange  bool
	LastCheckAt     time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NextCheckAt вычисляет момент следующей проверки. Пропущенные интервалы
// не накапливаются: при простое выполняется ровно одна догоняющая проверка.
func (m *Monitor) NextCheckAt() time.Time {
	return m.LastCheckAt.Add(m.CheckInterval)
}

// MonitorPatch описывает частичное обновление монитора.
// Nil-поле означает "оставить без изменений".
type MonitorPatch struct {
	Name            *string
	WebsiteID       *int64
	CheckInterval   *time.Duration
	Keywords        []string
	ExcludeKeywords []string
	IsActive        *bool
	NotifyOnChange  *bool
}

func (m *Monitor) Apply(patch *MonitorPatch) {
	if patch.Name != nil {
		m.Name = *patch.Name
	}

	if patch.WebsiteID != nil {
		m.WebsiteID = *patch.WebsiteID
	}

	if patch.CheckInterval != nil {
		m.CheckInterval = *patch.CheckInterval
	}

	if patch.Keywords != nil {
		m.Keywords = patch.Keywords
	}

	if patch.ExcludeKeywords != nil {
		m.ExcludeKeywords = patch.ExcludeKeywords
	}

	if patch.IsActive != nil {
		m.IsActive = *patch.IsActive
	}

	if patch.NotifyOnChange != nil {
		m.NotifyOnChange = *patch.NotifyOnChange
	}

	m.UpdatedAt = time.Now()
}
