package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/remote-radar-dev/go-job-radar/internal/database"
	customerrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type JobRepository struct {
	db *database.PostgresDB
}

func NewJobRepository(db *database.PostgresDB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, monitor_id, title, company, url, location, tags,
	posted_date, raw_data, is_removed, created_at, updated_at`

// Save выполняет upsert по паре (monitor_id, url): повторное появление
// URL в выдаче обновляет запись и снимает пометку удаления.
func (r *JobRepository) Save(ctx context.Context, job *models.JobRecord) error {
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}

	job.UpdatedAt = now

	var postedDate *time.Time
	if !job.PostedDate.IsZero() {
		postedDate = &job.PostedDate
	}

	tags := job.Tags
	if tags == nil {
		tags = []string{}
	}

	var id int64

	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO jobs (monitor_id, title, company, url, location, tags,
		 posted_date, raw_data, is_removed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9, $10)
		 ON CONFLICT (monitor_id, url) DO UPDATE SET
		 title = EXCLUDED.title, company = EXCLUDED.company,
		 location = EXCLUDED.location, tags = EXCLUDED.tags,
		 posted_date = EXCLUDED.posted_date, raw_data = EXCLUDED.raw_data,
		 is_removed = FALSE, updated_at = EXCLUDED.updated_at
		 RETURNING id`,
		job.MonitorID, job.Title, job.Company, job.URL, job.Location, tags,
		postedDate, job.RawData, job.CreatedAt, job.UpdatedAt).Scan(&id)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении вакансии: %w", err)
	}

	job.ID = id

	return nil
}

func scanJob(row pgx.Row) (*models.JobRecord, error) {
	job := &models.JobRecord{}

	var postedDate *time.Time

	err := row.Scan(&job.ID, &job.MonitorID, &job.Title, &job.Company, &job.URL,
		&job.Location, &job.Tags, &postedDate, &job.RawData, &job.IsRemoved,
		&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if postedDate != nil {
		job.PostedDate = *postedDate
	}

	return job, nil
}

// FindByMonitorID возвращает только актуальные (не удалённые) вакансии
// монитора — именно с ними сравнивается свежая выдача.
func (r *JobRepository) FindByMonitorID(ctx context.Context, monitorID int64) ([]*models.JobRecord, error) {
	rows, err := r.db.Pool.Query(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE monitor_id = $1 AND NOT is_removed ORDER BY id",
		monitorID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе вакансий: %w", err)
	}
	defer rows.Close()

	var jobs []*models.JobRecord

	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании вакансии: %w", err)
		}

		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

func (r *JobRepository) FindByURL(ctx context.Context, monitorID int64, url string) (*models.JobRecord, error) {
	row := r.db.Pool.QueryRow(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE monitor_id = $1 AND url = $2",
		monitorID, url)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrJobNotFound{URL: url}
		}

		return nil, fmt.Errorf("ошибка при поиске вакансии по URL: %w", err)
	}

	return job, nil
}

// MarkRemoved помечает вакансию удалённой, не стирая запись.
func (r *JobRepository) MarkRemoved(ctx context.Context, monitorID int64, url string) error {
	tag, err := r.db.Pool.Exec(ctx,
		"UPDATE jobs SET is_removed = TRUE, updated_at = NOW() WHERE monitor_id = $1 AND url = $2",
		monitorID, url)
	if err != nil {
		return fmt.Errorf("ошибка при пометке вакансии удалённой: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrJobNotFound{URL: url}
	}

	return nil
}

func (r *JobRepository) CountActive(ctx context.Context) (int, error) {
	var count int

	err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM jobs WHERE NOT is_removed").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка при подсчёте вакансий: %w", err)
	}

	return count, nil
}
