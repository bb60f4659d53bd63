package orm

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/remote-radar-dev/go-job-radar/internal/database"
	customerrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
	"github.com/remote-radar-dev/go-job-radar/pkg/txs"
)

type ChatRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewChatRepository(db *database.PostgresDB, txManager *txs.TxManager) *ChatRepository {
	return &ChatRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

func (r *ChatRepository) Save(ctx context.Context, chat *models.Chat) error {
	return r.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		querier := txs.GetQuerier(ctx, r.db.Pool)

		existsQuery := r.sq.Select("1").From("chats").Where(sq.Eq{"id": chat.ID}).Limit(1)

		query, args, err := existsQuery.ToSql()
		if err != nil {
			return &customerrors.ErrBuildSQLQuery{Operation: "проверка существования чата", Cause: err}
		}

		var exists bool

		err = querier.QueryRow(ctx, "SELECT EXISTS("+query+")", args...).Scan(&exists)
		if err != nil {
			return &customerrors.ErrSQLExecution{Operation: "проверка существования чата", Cause: err}
		}

		if exists {
			return &customerrors.ErrChatAlreadyExists{ChatID: chat.ID}
		}

		now := time.Now()
		if chat.CreatedAt.IsZero() {
			chat.CreatedAt = now
		}

		chat.UpdatedAt = now

		if chat.NotificationMode == "" {
			chat.NotificationMode = models.NotificationModeInstant
		}

		insertQuery := r.sq.Insert("chats").
			Columns("id", "notification_mode", "digest_time", "created_at", "updated_at").
			Values(chat.ID, chat.NotificationMode, chat.DigestTime.Format("15:04"),
				chat.CreatedAt, chat.UpdatedAt)

		query, args, err = insertQuery.ToSql()
		if err != nil {
			return &customerrors.ErrBuildSQLQuery{Operation: "вставка чата", Cause: err}
		}

		if _, err := querier.Exec(ctx, query, args...); err != nil {
			return &customerrors.ErrSQLExecution{Operation: "сохранение чата", Cause: err}
		}

		return r.saveMonitors(ctx, querier, chat)
	})
}

func (r *ChatRepository) saveMonitors(ctx context.Context, querier txs.Querier, chat *models.Chat) error {
	if len(chat.Monitors) == 0 {
		return nil
	}

	insertQuery := r.sq.Insert("chat_monitors").Columns("chat_id", "monitor_id")

	for _, monitorID := range chat.Monitors {
		insertQuery = insertQuery.Values(chat.ID, monitorID)
	}

	query, args, err := insertQuery.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "вставка подписок чата", Cause: err}
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение подписок чата", Cause: err}
	}

	return nil
}

func (r *ChatRepository) loadMonitors(ctx context.Context, chat *models.Chat) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select("monitor_id").
		From("chat_monitors").
		Where(sq.Eq{"chat_id": chat.ID}).
		OrderBy("monitor_id")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "получение подписок чата", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "получение подписок чата", Cause: err}
	}
	defer rows.Close()

	for rows.Next() {
		var monitorID int64

		if err := rows.Scan(&monitorID); err != nil {
			return &customerrors.ErrSQLScan{Entity: "подписки чата", Cause: err}
		}

		chat.Monitors = append(chat.Monitors, monitorID)
	}

	return rows.Err()
}

func scanChat(row pgx.Row) (*models.Chat, error) {
	chat := &models.Chat{}

	var digestTime time.Time

	err := row.Scan(&chat.ID, &chat.NotificationMode, &digestTime,
		&chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return nil, err
	}

	chat.DigestTime = digestTime

	return chat, nil
}

func (r *ChatRepository) FindByID(ctx context.Context, id int64) (*models.Chat, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select("id", "notification_mode", "digest_time", "created_at", "updated_at").
		From("chats").
		Where(sq.Eq{"id": id})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск чата", Cause: err}
	}

	chat, err := scanChat(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrChatNotFound{ChatID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск чата", Cause: err}
	}

	if err := r.loadMonitors(ctx, chat); err != nil {
		return nil, err
	}

	return chat, nil
}

func (r *ChatRepository) Delete(ctx context.Context, id int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("chats").Where(sq.Eq{"id": id})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "удаление чата", Cause: err}
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление чата", Cause: err}
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrChatNotFound{ChatID: id}
	}

	return nil
}

func (r *ChatRepository) AddMonitor(ctx context.Context, chatID, monitorID int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	insertQuery := r.sq.Insert("chat_monitors").
		Columns("chat_id", "monitor_id").
		Values(chatID, monitorID).
		Suffix("ON CONFLICT DO NOTHING")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "добавление подписки", Cause: err}
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "добавление подписки", Cause: err}
	}

	return nil
}

func (r *ChatRepository) RemoveMonitor(ctx context.Context, chatID, monitorID int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("chat_monitors").
		Where(sq.Eq{"chat_id": chatID, "monitor_id": monitorID})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "удаление подписки", Cause: err}
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление подписки", Cause: err}
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrMonitorNotFound{ID: monitorID}
	}

	return nil
}

func (r *ChatRepository) FindByMonitorID(ctx context.Context, monitorID int64) ([]*models.Chat, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select("c.id", "c.notification_mode", "c.digest_time",
		"c.created_at", "c.updated_at").
		From("chats c").
		Join("chat_monitors cm ON cm.chat_id = c.id").
		Where(sq.Eq{"cm.monitor_id": monitorID}).
		OrderBy("c.id")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение чатов монитора", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "получение чатов монитора", Cause: err}
	}
	defer rows.Close()

	var chats []*models.Chat

	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "чата", Cause: err}
		}

		chats = append(chats, chat)
	}

	return chats, rows.Err()
}

func (r *ChatRepository) UpdateNotificationSettings(ctx context.Context, chatID int64,
	mode models.NotificationMode, digestTime time.Time) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("chats").
		Set("notification_mode", mode).
		Set("digest_time", digestTime.Format("15:04")).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": chatID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "обновление настроек уведомлений", Cause: err}
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "обновление настроек уведомлений", Cause: err}
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrChatNotFound{ChatID: chatID}
	}

	return nil
}

func (r *ChatRepository) FindByDigestTime(ctx context.Context, hour, minute int) ([]*models.Chat, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	digestTime := fmt.Sprintf("%02d:%02d", hour, minute)

	selectQuery := r.sq.Select("id", "notification_mode", "digest_time", "created_at", "updated_at").
		From("chats").
		Where(sq.Eq{"notification_mode": models.NotificationModeDigest, "digest_time": digestTime}).
		OrderBy("id")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск чатов по времени дайджеста", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "поиск чатов по времени дайджеста", Cause: err}
	}
	defer rows.Close()

	var chats []*models.Chat

	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "чата", Cause: err}
		}

		chats = append(chats, chat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, chat := range chats {
		if err := r.loadMonitors(ctx, chat); err != nil {
			return nil, err
		}
	}

	return chats, nil
}
