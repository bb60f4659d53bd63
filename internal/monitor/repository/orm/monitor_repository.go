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

type MonitorRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewMonitorRepository(db *database.PostgresDB, txManager *txs.TxManager) *MonitorRepository {
	return &MonitorRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

var monitorColumns = []string{
	"id", "name", "website_id", "check_interval_minutes", "is_active",
	"notify_on_change", "last_check_at", "created_at", "updated_at",
}

func (r *MonitorRepository) Save(ctx context.Context, monitor *models.Monitor) error {
	return r.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		querier := txs.GetQuerier(ctx, r.db.Pool)

		now := time.Now()
		if monitor.CreatedAt.IsZero() {
			monitor.CreatedAt = now
		}

		if monitor.LastCheckAt.IsZero() {
			monitor.LastCheckAt = now
		}

		monitor.UpdatedAt = now

		insertQuery := r.sq.Insert("monitors").
			Columns("name", "website_id", "check_interval_minutes", "is_active",
				"notify_on_change", "last_check_at", "created_at", "updated_at").
			Values(monitor.Name, monitor.WebsiteID, int(monitor.CheckInterval.Minutes()),
				monitor.IsActive, monitor.NotifyOnChange, monitor.LastCheckAt,
				monitor.CreatedAt, monitor.UpdatedAt).
			Suffix("RETURNING id")

		query, args, err := insertQuery.ToSql()
		if err != nil {
			return &customerrors.ErrBuildSQLQuery{Operation: "вставка монитора", Cause: err}
		}

		var id int64

		err = querier.QueryRow(ctx, query, args...).Scan(&id)
		if err != nil {
			return &customerrors.ErrSQLExecution{Operation: "сохранение монитора", Cause: err}
		}

		monitor.ID = id

		return r.saveKeywords(ctx, querier, id, monitor.Keywords, monitor.ExcludeKeywords)
	})
}

func (r *MonitorRepository) saveKeywords(ctx context.Context, querier txs.Querier,
	monitorID int64, keywords, excludeKeywords []string) error {
	deleteQuery := r.sq.Delete("monitor_keywords").Where(sq.Eq{"monitor_id": monitorID})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "очистка ключевых слов", Cause: err}
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "очистка ключевых слов", Cause: err}
	}

	if len(keywords) == 0 && len(excludeKeywords) == 0 {
		return nil
	}

	insertQuery := r.sq.Insert("monitor_keywords").Columns("monitor_id", "value", "is_exclude")

	for _, keyword := range keywords {
		insertQuery = insertQuery.Values(monitorID, keyword, false)
	}

	for _, keyword := range excludeKeywords {
		insertQuery = insertQuery.Values(monitorID, keyword, true)
	}

	query, args, err = insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "вставка ключевых слов", Cause: err}
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение ключевых слов", Cause: err}
	}

	return nil
}

func (r *MonitorRepository) loadKeywords(ctx context.Context, monitor *models.Monitor) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select("value", "is_exclude").
		From("monitor_keywords").
		Where(sq.Eq{"monitor_id": monitor.ID}).
		OrderBy("id")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "получение ключевых слов", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "получение ключевых слов", Cause: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			value     string
			isExclude bool
		)

		if err := rows.Scan(&value, &isExclude); err != nil {
			return &customerrors.ErrSQLScan{Entity: "ключевого слова", Cause: err}
		}

		if isExclude {
			monitor.ExcludeKeywords = append(monitor.ExcludeKeywords, value)
		} else {
			monitor.Keywords = append(monitor.Keywords, value)
		}
	}

	return rows.Err()
}

func scanMonitor(row pgx.Row) (*models.Monitor, error) {
	monitor := &models.Monitor{}

	var intervalMinutes int

	err := row.Scan(&monitor.ID, &monitor.Name, &monitor.WebsiteID, &intervalMinutes,
		&monitor.IsActive, &monitor.NotifyOnChange, &monitor.LastCheckAt,
		&monitor.CreatedAt, &monitor.UpdatedAt)
	if err != nil {
		return nil, err
	}

	monitor.CheckInterval = time.Duration(intervalMinutes) * time.Minute

	return monitor, nil
}

func (r *MonitorRepository) FindByID(ctx context.Context, id int64) (*models.Monitor, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(monitorColumns...).From("monitors").Where(sq.Eq{"id": id})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск монитора", Cause: err}
	}

	monitor, err := scanMonitor(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrMonitorNotFound{ID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск монитора", Cause: err}
	}

	if err := r.loadKeywords(ctx, monitor); err != nil {
		return nil, err
	}

	return monitor, nil
}

func (r *MonitorRepository) getMany(ctx context.Context, selectQuery sq.SelectBuilder) ([]*models.Monitor, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение мониторов", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "получение мониторов", Cause: err}
	}
	defer rows.Close()

	var monitors []*models.Monitor

	for rows.Next() {
		monitor, err := scanMonitor(rows)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "монитора", Cause: err}
		}

		monitors = append(monitors, monitor)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, monitor := range monitors {
		if err := r.loadKeywords(ctx, monitor); err != nil {
			return nil, err
		}
	}

	return monitors, nil
}

func (r *MonitorRepository) GetAll(ctx context.Context) ([]*models.Monitor, error) {
	return r.getMany(ctx, r.sq.Select(monitorColumns...).From("monitors").OrderBy("id"))
}

func (r *MonitorRepository) GetAllActive(ctx context.Context) ([]*models.Monitor, error) {
	return r.getMany(ctx, r.sq.Select(monitorColumns...).From("monitors").
		Where(sq.Eq{"is_active": true}).OrderBy("id"))
}

func (r *MonitorRepository) Update(ctx context.Context, monitor *models.Monitor) error {
	return r.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		querier := txs.GetQuerier(ctx, r.db.Pool)

		monitor.UpdatedAt = time.Now()

		updateQuery := r.sq.Update("monitors").
			Set("name", monitor.Name).
			Set("website_id", monitor.WebsiteID).
			Set("check_interval_minutes", int(monitor.CheckInterval.Minutes())).
			Set("is_active", monitor.IsActive).
			Set("notify_on_change", monitor.NotifyOnChange).
			Set("updated_at", monitor.UpdatedAt).
			Where(sq.Eq{"id": monitor.ID})

		query, args, err := updateQuery.ToSql()
		if err != nil {
			return &customerrors.ErrBuildSQLQuery{Operation: "обновление монитора", Cause: err}
		}

		tag, err := querier.Exec(ctx, query, args...)
		if err != nil {
			return &customerrors.ErrSQLExecution{Operation: "обновление монитора", Cause: err}
		}

		if tag.RowsAffected() == 0 {
			return &customerrors.ErrMonitorNotFound{ID: monitor.ID}
		}

		return r.saveKeywords(ctx, querier, monitor.ID, monitor.Keywords, monitor.ExcludeKeywords)
	})
}

func (r *MonitorRepository) UpdateLastCheck(ctx context.Context, id int64, lastCheckAt time.Time) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("monitors").
		Set("last_check_at", lastCheckAt).
		Where(sq.Eq{"id": id})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "обновление времени проверки", Cause: err}
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "обновление времени проверки", Cause: err}
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrMonitorNotFound{ID: id}
	}

	return nil
}

func (r *MonitorRepository) Delete(ctx context.Context, id int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("monitors").Where(sq.Eq{"id": id})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "удаление монитора", Cause: err}
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление монитора", Cause: err}
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrMonitorNotFound{ID: id}
	}

	return nil
}

func (r *MonitorRepository) Count(ctx context.Context) (int, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	countQuery := r.sq.Select("COUNT(*)").From("monitors")

	query, args, err := countQuery.ToSql()
	if err != nil {
		return 0, &customerrors.ErrBuildSQLQuery{Operation: "подсчёт мониторов", Cause: err}
	}

	var count int

	err = querier.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, &customerrors.ErrSQLExecution{Operation: "подсчёт мониторов", Cause: err}
	}

	return count, nil
}
