package crawler

import (
	"strings"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

// FilterJobsByKeywords — чистая функция отбора вакансий. Вакансия
// проходит, если при непустом списке keywords хотя бы одно ключевое
// слово встречается в названии, компании или описании (без учёта
// регистра) и ни одно слово из excludeKeywords не встречается.
// Пустые списки фильтров возвращают вход без изменений.
func FilterJobsByKeywords(jobs []*models.JobRecord, keywords, excludeKeywords []string) []*models.JobRecord {
	if len(keywords) == 0 && len(excludeKeywords) == 0 {
		return jobs
	}

	filtered := make([]*models.JobRecord, 0, len(jobs))

	for _, job := range jobs {
		text := strings.ToLower(job.SearchText())

		if len(keywords) > 0 && !containsAny(text, keywords) {
			continue
		}

		if containsAny(text, excludeKeywords) {
			continue
		}

		filtered = append(filtered, job)
	}

	return filtered
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}

		if strings.Contains(text, strings.ToLower(keyword)) {
			return true
		}
	}

	return false
}
