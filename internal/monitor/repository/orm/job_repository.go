package orm

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/remote-radar-dev/go-job-radar/internal/database"
	customerrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
	"github.com/remote-radar-dev/go-job-radar/pkg/txs"
)

type JobRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewJobRepository(db *database.PostgresDB, txManager *txs.TxManager) *JobRepository {
	return &JobRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

var jobColumns = []string{
	"id", "monitor_id", "title", "company", "url", "location", "tags",
	"posted_date", "raw_data", "is_removed", "created_at", "updated_at",
}

// Save выполняет upsert по паре (monitor_id, url): повторное появление
// URL в выдаче обновляет запись и снимает пометку удаления.
func (r *JobRepository) Save(ctx context.Context, job *models.JobRecord) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

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

	insertQuery := r.sq.Insert("jobs").
		Columns("monitor_id", "title", "company", "url", "location", "tags",
			"posted_date", "raw_data", "is_removed", "created_at", "updated_at").
		Values(job.MonitorID, job.Title, job.Company, job.URL, job.Location, tags,
			postedDate, job.RawData, false, job.CreatedAt, job.UpdatedAt).
		Suffix(`ON CONFLICT (monitor_id, url) DO UPDATE SET
			title = EXCLUDED.title, company = EXCLUDED.company,
			location = EXCLUDED.location, tags = EXCLUDED.tags,
			posted_date = EXCLUDED.posted_date, raw_data = EXCLUDED.raw_data,
			is_removed = FALSE, updated_at = EXCLUDED.updated_at
			RETURNING id`)

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "вставка вакансии", Cause: err}
	}

	var id int64

	err = querier.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение вакансии", Cause: err}
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

func (r *JobRepository) FindByMonitorID(ctx context.Context, monitorID int64) ([]*models.JobRecord, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(jobColumns...).From("jobs").
		Where(sq.Eq{"monitor_id": monitorID, "is_removed": false}).
		OrderBy("id")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение вакансий", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "получение вакансий", Cause: err}
	}
	defer rows.Close()

	var jobs []*models.JobRecord

	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "вакансии", Cause: err}
		}

		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

func (r *JobRepository) FindByURL(ctx context.Context, monitorID int64, url string) (*models.JobRecord, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(jobColumns...).From("jobs").
		Where(sq.Eq{"monitor_id": monitorID, "url": url})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск вакансии", Cause: err}
	}

	job, err := scanJob(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrJobNotFound{URL: url}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск вакансии", Cause: err}
	}

	return job, nil
}

func (r *JobRepository) MarkRemoved(ctx context.Context, monitorID int64, url string) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("jobs").
		Set("is_removed", true).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"monitor_id": monitorID, "url": url})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "пометка вакансии удалённой", Cause: err}
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "пометка вакансии удалённой", Cause: err}
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrJobNotFound{URL: url}
	}

	return nil
}

func (r *JobRepository) CountActive(ctx context.Context) (int, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	countQuery := r.sq.Select("COUNT(*)").From("jobs").Where(sq.Eq{"is_removed": false})

	query, args, err := countQuery.ToSql()
	if err != nil {
		return 0, &customerrors.ErrBuildSQLQuery{Operation: "подсчёт вакансий", Cause: err}
	}

	var count int

	err = querier.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, &customerrors.ErrSQLExecution{Operation: "подсчёт вакансий", Cause: err}
	}

	return count, nil
}
