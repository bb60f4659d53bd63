package sql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/remote-radar-dev/go-job-radar/internal/database"
	customerrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type WebsiteRepository struct {
	db *database.PostgresDB
}

func NewWebsiteRepository(db *database.PostgresDB) *WebsiteRepository {
	return &WebsiteRepository{db: db}
}

func (r *WebsiteRepository) Save(ctx context.Context, website *models.Website) error {
	var exists bool

	err := r.db.Pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM websites WHERE url = $1)", website.URL).Scan(&exists)
	if err != nil {
		return fmt.Errorf("ошибка при проверке существования площадки: %w", err)
	}

	if exists {
		return &customerrors.ErrWebsiteAlreadyExists{URL: website.URL}
	}

	selectors, err := json.Marshal(website.Selectors)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации селекторов: %w", err)
	}

	now := time.Now()
	if website.CreatedAt.IsZero() {
		website.CreatedAt = now
	}

	website.UpdatedAt = now

	var id int64

	err = r.db.Pool.QueryRow(ctx,
		`INSERT INTO websites (name, url, type, selectors, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		website.Name, website.URL, website.Type, selectors, website.IsActive,
		website.CreatedAt, website.UpdatedAt).Scan(&id)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении площадки: %w", err)
	}

	website.ID = id

	return nil
}

func (r *WebsiteRepository) FindByID(ctx context.Context, id int64) (*models.Website, error) {
	website := &models.Website{ID: id}

	var selectors []byte

	err := r.db.Pool.QueryRow(ctx,
		`SELECT name, url, type, selectors, is_active, created_at, updated_at
		 FROM websites WHERE id = $1`,
		id).Scan(&website.Name, &website.URL, &website.Type, &selectors,
		&website.IsActive, &website.CreatedAt, &website.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrWebsiteNotFound{ID: id}
		}

		return nil, fmt.Errorf("ошибка при поиске площадки по ID: %w", err)
	}

	if err := json.Unmarshal(selectors, &website.Selectors); err != nil {
		return nil, fmt.Errorf("ошибка при десериализации селекторов: %w", err)
	}

	return website, nil
}

func (r *WebsiteRepository) GetAll(ctx context.Context) ([]*models.Website, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, url, type, selectors, is_active, created_at, updated_at
		 FROM websites ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе площадок: %w", err)
	}
	defer rows.Close()

	var websites []*models.Website

	for rows.Next() {
		website := &models.Website{}

		var selectors []byte

		if err := rows.Scan(&website.ID, &website.Name, &website.URL, &website.Type,
			&selectors, &website.IsActive, &website.CreatedAt, &website.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании площадки: %w", err)
		}

		if err := json.Unmarshal(selectors, &website.Selectors); err != nil {
			return nil, fmt.Errorf("ошибка при десериализации селекторов: %w", err)
		}

		websites = append(websites, website)
	}

	return websites, rows.Err()
}

func (r *WebsiteRepository) Update(ctx context.Context, website *models.Website) error {
	selectors, err := json.Marshal(website.Selectors)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации селекторов: %w", err)
	}

	website.UpdatedAt = time.Now()

	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE websites SET name = $1, url = $2, type = $3, selectors = $4,
		 is_active = $5, updated_at = $6 WHERE id = $7`,
		website.Name, website.URL, website.Type, selectors, website.IsActive,
		website.UpdatedAt, website.ID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении площадки: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrWebsiteNotFound{ID: website.ID}
	}

	return nil
}
