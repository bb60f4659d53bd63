package orm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/remote-radar-dev/go-job-radar/internal/database"
	customerrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
	"github.com/remote-radar-dev/go-job-radar/pkg/txs"
)

type ChannelRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewChannelRepository(db *database.PostgresDB, txManager *txs.TxManager) *ChannelRepository {
	return &ChannelRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

func (r *ChannelRepository) Save(ctx context.Context, channel *models.NotificationChannel) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	config, err := json.Marshal(channel.Config)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сериализация настроек канала", Cause: err}
	}

	if channel.CreatedAt.IsZero() {
		channel.CreatedAt = time.Now()
	}

	insertQuery := r.sq.Insert("channels").
		Columns("type", "name", "config", "is_active", "created_at").
		Values(channel.Type, channel.Name, config, channel.IsActive, channel.CreatedAt).
		Suffix("RETURNING id")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "вставка канала", Cause: err}
	}

	var id int64

	err = querier.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение канала", Cause: err}
	}

	channel.ID = id

	return nil
}

func scanChannel(row pgx.Row) (*models.NotificationChannel, error) {
	channel := &models.NotificationChannel{}

	var config []byte

	err := row.Scan(&channel.ID, &channel.Type, &channel.Name, &config,
		&channel.IsActive, &channel.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(config, &channel.Config); err != nil {
		return nil, &customerrors.ErrSQLScan{Entity: "настроек канала", Cause: err}
	}

	return channel, nil
}

func (r *ChannelRepository) FindByID(ctx context.Context, id int64) (*models.NotificationChannel, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select("id", "type", "name", "config", "is_active", "created_at").
		From("channels").
		Where(sq.Eq{"id": id})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск канала", Cause: err}
	}

	channel, err := scanChannel(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrChannelNotFound{ID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск канала", Cause: err}
	}

	return channel, nil
}

func (r *ChannelRepository) getMany(ctx context.Context, selectQuery sq.SelectBuilder,
	operation string) ([]*models.NotificationChannel, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: operation, Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}
	defer rows.Close()

	var channels []*models.NotificationChannel

	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "канала", Cause: err}
		}

		channels = append(channels, channel)
	}

	return channels, rows.Err()
}

func (r *ChannelRepository) FindActiveByMonitorID(ctx context.Context, monitorID int64) ([]*models.NotificationChannel, error) {
	selectQuery := r.sq.Select("c.id", "c.type", "c.name", "c.config", "c.is_active", "c.created_at").
		From("channels c").
		Join("monitor_channels mc ON mc.channel_id = c.id").
		Where(sq.Eq{"mc.monitor_id": monitorID, "c.is_active": true}).
		OrderBy("c.id")

	return r.getMany(ctx, selectQuery, "получение каналов монитора")
}

func (r *ChannelRepository) GetAll(ctx context.Context) ([]*models.NotificationChannel, error) {
	selectQuery := r.sq.Select("id", "type", "name", "config", "is_active", "created_at").
		From("channels").
		OrderBy("id")

	return r.getMany(ctx, selectQuery, "получение каналов")
}

func (r *ChannelRepository) AttachToMonitor(ctx context.Context, monitorID, channelID int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	insertQuery := r.sq.Insert("monitor_channels").
		Columns("monitor_id", "channel_id").
		Values(monitorID, channelID).
		Suffix("ON CONFLICT DO NOTHING")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "привязка канала", Cause: err}
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "привязка канала", Cause: err}
	}

	return nil
}
