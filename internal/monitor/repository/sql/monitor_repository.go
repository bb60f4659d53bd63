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

type MonitorRepository struct {
	db *database.PostgresDB
}

func NewMonitorRepository(db *database.PostgresDB) *MonitorRepository {
	return &MonitorRepository{db: db}
}

func (r *MonitorRepository) Save(ctx context.Context, monitor *models.Monitor) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	now := time.Now()
	if monitor.CreatedAt.IsZero() {
		monitor.CreatedAt = now
	}

	if monitor.LastCheckAt.IsZero() {
		monitor.LastCheckAt = now
	}

	monitor.UpdatedAt = now

	var id int64

	err = tx.QueryRow(ctx,
		`INSERT INTO monitors (name, website_id, check_interval_minutes, is_active,
		 notify_on_change, last_check_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		monitor.Name, monitor.WebsiteID, int(monitor.CheckInterval.Minutes()),
		monitor.IsActive, monitor.NotifyOnChange, monitor.LastCheckAt,
		monitor.CreatedAt, monitor.UpdatedAt).Scan(&id)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении монитора: %w", err)
	}

	monitor.ID = id

	err = saveKeywords(ctx, tx, id, monitor.Keywords, monitor.ExcludeKeywords)
	if err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return nil
}

func saveKeywords(ctx context.Context, tx pgx.Tx, monitorID int64, keywords, excludeKeywords []string) error {
	_, err := tx.Exec(ctx, "DELETE FROM monitor_keywords WHERE monitor_id = $1", monitorID)
	if err != nil {
		return fmt.Errorf("ошибка при очистке ключевых слов: %w", err)
	}

	for _, keyword := range keywords {
		_, err := tx.Exec(ctx,
			"INSERT INTO monitor_keywords (monitor_id, value, is_exclude) VALUES ($1, $2, FALSE)",
			monitorID, keyword)
		if err != nil {
			return fmt.Errorf("ошибка при сохранении ключевого слова %s: %w", keyword, err)
		}
	}

	for _, keyword := range excludeKeywords {
		_, err := tx.Exec(ctx,
			"INSERT INTO monitor_keywords (monitor_id, value, is_exclude) VALUES ($1, $2, TRUE)",
			monitorID, keyword)
		if err != nil {
			return fmt.Errorf("ошибка при сохранении исключающего слова %s: %w", keyword, err)
		}
	}

	return nil
}

func (r *MonitorRepository) loadKeywords(ctx context.Context, monitor *models.Monitor) error {
	rows, err := r.db.Pool.Query(ctx,
		"SELECT value, is_exclude FROM monitor_keywords WHERE monitor_id = $1 ORDER BY id",
		monitor.ID)
	if err != nil {
		return fmt.Errorf("ошибка при запросе ключевых слов: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			value     string
			isExclude bool
		)

		if err := rows.Scan(&value, &isExclude); err != nil {
			return fmt.Errorf("ошибка при сканировании ключевого слова: %w", err)
		}

		if isExclude {
			monitor.ExcludeKeywords = append(monitor.ExcludeKeywords, value)
		} else {
			monitor.Keywords = append(monitor.Keywords, value)
		}
	}

	return rows.Err()
}

func (r *MonitorRepository) scanMonitor(row pgx.Row) (*models.Monitor, error) {
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

const monitorColumns = `id, name, website_id, check_interval_minutes, is_active,
	notify_on_change, last_check_at, created_at, updated_at`

func (r *MonitorRepository) FindByID(ctx context.Context, id int64) (*models.Monitor, error) {
	row := r.db.Pool.QueryRow(ctx,
		"SELECT "+monitorColumns+" FROM monitors WHERE id = $1", id)

	monitor, err := r.scanMonitor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrMonitorNotFound{ID: id}
		}

		return nil, fmt.Errorf("ошибка при поиске монитора по ID: %w", err)
	}

	if err := r.loadKeywords(ctx, monitor); err != nil {
		return nil, err
	}

	return monitor, nil
}

func (r *MonitorRepository) getMany(ctx context.Context, query string) ([]*models.Monitor, error) {
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе мониторов: %w", err)
	}
	defer rows.Close()

	var monitors []*models.Monitor

	for rows.Next() {
		monitor, err := r.scanMonitor(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании монитора: %w", err)
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
	return r.getMany(ctx, "SELECT "+monitorColumns+" FROM monitors ORDER BY id")
}

func (r *MonitorRepository) GetAllActive(ctx context.Context) ([]*models.Monitor, error) {
	return r.getMany(ctx, "SELECT "+monitorColumns+" FROM monitors WHERE is_active ORDER BY id")
}

func (r *MonitorRepository) Update(ctx context.Context, monitor *models.Monitor) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	monitor.UpdatedAt = time.Now()

	tag, err := tx.Exec(ctx,
		`UPDATE monitors SET name = $1, website_id = $2, check_interval_minutes = $3,
		 is_active = $4, notify_on_change = $5, updated_at = $6 WHERE id = $7`,
		monitor.Name, monitor.WebsiteID, int(monitor.CheckInterval.Minutes()),
		monitor.IsActive, monitor.NotifyOnChange, monitor.UpdatedAt, monitor.ID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении монитора: %w", err)
	}

	if tag.RowsAffected() == 0 {
		err = &customerrors.ErrMonitorNotFound{ID: monitor.ID}
		return err
	}

	err = saveKeywords(ctx, tx, monitor.ID, monitor.Keywords, monitor.ExcludeKeywords)
	if err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return nil
}

func (r *MonitorRepository) UpdateLastCheck(ctx context.Context, id int64, lastCheckAt time.Time) error {
	tag, err := r.db.Pool.Exec(ctx,
		"UPDATE monitors SET last_check_at = $1 WHERE id = $2", lastCheckAt, id)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении времени проверки: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrMonitorNotFound{ID: id}
	}

	return nil
}

func (r *MonitorRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, "DELETE FROM monitors WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("ошибка при удалении монитора: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrMonitorNotFound{ID: id}
	}

	return nil
}

func (r *MonitorRepository) Count(ctx context.Context) (int, error) {
	var count int

	err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM monitors").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка при подсчёте мониторов: %w", err)
	}

	return count, nil
}
