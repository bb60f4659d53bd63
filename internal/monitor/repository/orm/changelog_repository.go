package orm

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/remote-radar-dev/go-job-radar/internal/database"
	customerrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
	"github.com/remote-radar-dev/go-job-radar/pkg/txs"
)

type ChangeLogRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewChangeLogRepository(db *database.PostgresDB, txManager *txs.TxManager) *ChangeLogRepository {
	return &ChangeLogRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

func (r *ChangeLogRepository) Append(ctx context.Context, entry *models.ChangeLogEntry) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	insertQuery := r.sq.Insert("change_log").
		Columns("monitor_id", "job_id", "change_type", "old_data", "new_data",
			"is_notified", "created_at").
		Values(entry.MonitorID, entry.JobID, entry.ChangeType, entry.OldData,
			entry.NewData, entry.IsNotified, entry.CreatedAt).
		Suffix("RETURNING id")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "добавление записи журнала", Cause: err}
	}

	var id int64

	err = querier.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "добавление записи журнала", Cause: err}
	}

	entry.ID = id

	return nil
}

func (r *ChangeLogRepository) MarkNotified(ctx context.Context, id int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("change_log").
		Set("is_notified", true).
		Where(sq.Eq{"id": id})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "пометка записи журнала", Cause: err}
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "пометка записи журнала", Cause: err}
	}

	return nil
}

func (r *ChangeLogRepository) FindByMonitorID(ctx context.Context, monitorID int64, limit int) ([]*models.ChangeLogEntry, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select("id", "monitor_id", "job_id", "change_type",
		"old_data", "new_data", "is_notified", "created_at").
		From("change_log").
		Where(sq.Eq{"monitor_id": monitorID}).
		OrderBy("created_at DESC")

	if limit > 0 {
		selectQuery = selectQuery.Limit(uint64(limit))
	}

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение журнала изменений", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "получение журнала изменений", Cause: err}
	}
	defer rows.Close()

	var entries []*models.ChangeLogEntry

	for rows.Next() {
		entry := &models.ChangeLogEntry{}

		if err := rows.Scan(&entry.ID, &entry.MonitorID, &entry.JobID, &entry.ChangeType,
			&entry.OldData, &entry.NewData, &entry.IsNotified, &entry.CreatedAt); err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "записи журнала", Cause: err}
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
