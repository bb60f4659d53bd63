package notify

import (
	"fmt"
	"strings"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

func formatUpdate(update *models.JobUpdate) string {
	var header string

	switch update.ChangeType {
	case models.ChangeNew:
		header = "🆕 Новая вакансия"
	case models.ChangeRemoved:
		header = "❌ Вакансия снята с публикации"
	case models.ChangeUpdated:
		header = "✏️ Вакансия обновлена"
	default:
		header = "🔔 Изменение вакансии"
	}

	job := update.Job

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s\n\n📎 %s", header, job.Title))

	if job.Company != "" {
		sb.WriteString(fmt.Sprintf("\n🏢 Компания: %s", job.Company))
	}

	if job.Location != "" {
		sb.WriteString(fmt.Sprintf("\n📍 Локация: %s", job.Location))
	}

	if len(job.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("\n🏷️ Теги: %s", strings.Join(job.Tags, ", ")))
	}

	sb.WriteString(fmt.Sprintf("\n🔗 %s", job.URL))
	sb.WriteString(fmt.Sprintf("\n\n📡 Монитор: %s", update.MonitorName))

	if preview := models.TextPreview(job.RawData, 300); preview != "" {
		sb.WriteString(fmt.Sprintf("\n📝 Превью:\n%s", preview))
	}

	return sb.String()
}
