package orm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/remote-radar-dev/go-job-radar/internal/database"
	customerrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type ChatStateRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewChatStateRepository(db *database.PostgresDB) *ChatStateRepository {
	return &ChatStateRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ChatStateRepository) GetState(ctx context.Context, chatID int64) (models.ChatState, error) {
	selectQuery := r.sq.Select("state").
		From("chat_states").
		Where(sq.Eq{"chat_id": chatID})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return models.StateIdle, &customerrors.ErrBuildSQLQuery{Operation: "получение состояния чата", Cause: err}
	}

	var state int

	err = r.db.Pool.QueryRow(ctx, query, args...).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.StateIdle, nil
		}

		return models.StateIdle, &customerrors.ErrSQLExecution{Operation: "получение состояния чата", Cause: err}
	}

	return models.ChatState(state), nil
}

func (r *ChatStateRepository) SetState(ctx context.Context, chatID int64, state models.ChatState) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	chatQuery, chatArgs, err := r.sq.Insert("chats").
		Columns("id").
		Values(chatID).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "создание чата", Cause: err}
	}

	_, err = tx.Exec(ctx, chatQuery, chatArgs...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "создание чата", Cause: err}
	}

	stateQuery, stateArgs, err := r.sq.Insert("chat_states").
		Columns("chat_id", "state").
		Values(chatID, int(state)).
		Suffix("ON CONFLICT (chat_id) DO UPDATE SET state = EXCLUDED.state").
		ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "сохранение состояния чата", Cause: err}
	}

	_, err = tx.Exec(ctx, stateQuery, stateArgs...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение состояния чата", Cause: err}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return nil
}

func (r *ChatStateRepository) GetData(ctx context.Context, chatID int64, key string) (interface{}, error) {
	selectQuery := r.sq.Select("data -> ?").
		From("chat_states").
		Where(sq.Eq{"chat_id": chatID})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение данных чата", Cause: err}
	}

	// Плейсхолдер ключа попадает в SELECT, поэтому идёт первым аргументом.
	args = append([]interface{}{key}, args...)

	var raw []byte

	err = r.db.Pool.QueryRow(ctx, query, args...).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "получение данных чата", Cause: err}
	}

	if raw == nil {
		return nil, nil
	}

	var value interface{}

	err = json.Unmarshal(raw, &value)
	if err != nil {
		return nil, fmt.Errorf("ошибка при десериализации данных: %w", err)
	}

	return value, nil
}

func (r *ChatStateRepository) SetData(ctx context.Context, chatID int64, key string, value interface{}) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации значения в JSON: %w", err)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	chatQuery, chatArgs, err := r.sq.Insert("chats").
		Columns("id").
		Values(chatID).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "создание чата", Cause: err}
	}

	_, err = tx.Exec(ctx, chatQuery, chatArgs...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "создание чата", Cause: err}
	}

	dataQuery, dataArgs, err := r.sq.Insert("chat_states").
		Columns("chat_id", "state", "data").
		Values(chatID, 0, sq.Expr("jsonb_build_object(?::text, ?::jsonb)", key, string(valueJSON))).
		Suffix("ON CONFLICT (chat_id) DO UPDATE SET data = chat_states.data || jsonb_build_object(?::text, ?::jsonb)",
			key, string(valueJSON)).
		ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "сохранение данных чата", Cause: err}
	}

	_, err = tx.Exec(ctx, dataQuery, dataArgs...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение данных чата", Cause: err}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return nil
}

func (r *ChatStateRepository) ClearData(ctx context.Context, chatID int64) error {
	updateQuery := r.sq.Update("chat_states").
		Set("data", sq.Expr("'{}'::jsonb")).
		Where(sq.Eq{"chat_id": chatID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "очистка данных чата", Cause: err}
	}

	_, err = r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "очистка данных чата", Cause: err}
	}

	return nil
}
