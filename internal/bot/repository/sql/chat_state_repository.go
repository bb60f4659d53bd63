package sql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/remote-radar-dev/go-job-radar/internal/database"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type ChatStateRepository struct {
	db *database.PostgresDB
}

func NewChatStateRepository(db *database.PostgresDB) *ChatStateRepository {
	return &ChatStateRepository{db: db}
}

func (r *ChatStateRepository) GetState(ctx context.Context, chatID int64) (models.ChatState, error) {
	var state int

	err := r.db.Pool.QueryRow(ctx, "SELECT state FROM chat_states WHERE chat_id = $1", chatID).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Нет записи — чат в исходном состоянии.
			return models.StateIdle, nil
		}

		return models.StateIdle, fmt.Errorf("ошибка при получении состояния чата: %w", err)
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

	_, err = tx.Exec(ctx, "INSERT INTO chats (id) VALUES ($1) ON CONFLICT (id) DO NOTHING", chatID)
	if err != nil {
		return fmt.Errorf("ошибка при создании чата: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO chat_states (chat_id, state) VALUES ($1, $2)
		ON CONFLICT (chat_id) DO UPDATE SET state = EXCLUDED.state
	`, chatID, int(state))
	if err != nil {
		return fmt.Errorf("ошибка при сохранении состояния чата: %w", err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return nil
}

func (r *ChatStateRepository) GetData(ctx context.Context, chatID int64, key string) (interface{}, error) {
	var raw []byte

	err := r.db.Pool.QueryRow(ctx, "SELECT data -> $2 FROM chat_states WHERE chat_id = $1",
		chatID, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("ошибка при получении данных чата: %w", err)
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

	_, err = tx.Exec(ctx, "INSERT INTO chats (id) VALUES ($1) ON CONFLICT (id) DO NOTHING", chatID)
	if err != nil {
		return fmt.Errorf("ошибка при создании чата: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO chat_states (chat_id, state, data)
		VALUES ($1, 0, jsonb_build_object($2::text, $3::jsonb))
		ON CONFLICT (chat_id) DO UPDATE SET
			data = chat_states.data || jsonb_build_object($2::text, $3::jsonb)
	`, chatID, key, string(valueJSON))
	if err != nil {
		return fmt.Errorf("ошибка при сохранении данных чата: %w", err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return nil
}

func (r *ChatStateRepository) ClearData(ctx context.Context, chatID int64) error {
	_, err := r.db.Pool.Exec(ctx, "UPDATE chat_states SET data = '{}'::jsonb WHERE chat_id = $1", chatID)
	if err != nil {
		return fmt.Errorf("ошибка при очистке данных чата: %w", err)
	}

	return nil
}
