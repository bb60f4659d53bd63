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

type WebsiteRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewWebsiteRepository(db *database.PostgresDB, txManager *txs.TxManager) *WebsiteRepository {
	return &WebsiteRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

func (r *WebsiteRepository) Save(ctx context.Context, website *models.Website) error {
	return r.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		querier := txs.GetQuerier(ctx, r.db.Pool)

		existsQuery := r.sq.Select("1").From("websites").Where(sq.Eq{"url": website.URL}).Limit(1)

		query, args, err := existsQuery.ToSql()
		if err != nil {
			return &customerrors.ErrBuildSQLQuery{Operation: "проверка существования площадки", Cause: err}
		}

		var exists bool

		err = querier.QueryRow(ctx, "SELECT EXISTS("+query+")", args...).Scan(&exists)
		if err != nil {
			return &customerrors.ErrSQLExecution{Operation: "проверка существования площадки", Cause: err}
		}

		if exists {
			return &customerrors.ErrWebsiteAlreadyExists{URL: website.URL}
		}

		selectors, err := json.Marshal(website.Selectors)
		if err != nil {
			return &customerrors.ErrSQLExecution{Operation: "сериализация селекторов", Cause: err}
		}

		now := time.Now()
		if website.CreatedAt.IsZero() {
			website.CreatedAt = now
		}

		website.UpdatedAt = now

		insertQuery := r.sq.Insert("websites").
			Columns("name", "url", "type", "selectors", "is_active", "created_at", "updated_at").
			Values(website.Name, website.URL, website.Type, selectors, website.IsActive,
				website.CreatedAt, website.UpdatedAt).
			Suffix("RETURNING id")

		query, args, err = insertQuery.ToSql()
		if err != nil {
			return &customerrors.ErrBuildSQLQuery{Operation: "вставка площадки", Cause: err}
		}

		var id int64

		err = querier.QueryRow(ctx, query, args...).Scan(&id)
		if err != nil {
			return &customerrors.ErrSQLExecution{Operation: "сохранение площадки", Cause: err}
		}

		website.ID = id

		return nil
	})
}

func (r *WebsiteRepository) FindByID(ctx context.Context, id int64) (*models.Website, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select("name", "url", "type", "selectors", "is_active", "created_at", "updated_at").
		From("websites").
		Where(sq.Eq{"id": id})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск площадки", Cause: err}
	}

	website := &models.Website{ID: id}

	var selectors []byte

	err = querier.QueryRow(ctx, query, args...).Scan(&website.Name, &website.URL,
		&website.Type, &selectors, &website.IsActive, &website.CreatedAt, &website.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrWebsiteNotFound{ID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск площадки", Cause: err}
	}

	if err := json.Unmarshal(selectors, &website.Selectors); err != nil {
		return nil, &customerrors.ErrSQLScan{Entity: "селекторов площадки", Cause: err}
	}

	return website, nil
}

func (r *WebsiteRepository) GetAll(ctx context.Context) ([]*models.Website, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select("id", "name", "url", "type", "selectors", "is_active", "created_at", "updated_at").
		From("websites").
		OrderBy("id")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение площадок", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "получение площадок", Cause: err}
	}
	defer rows.Close()

	var websites []*models.Website

	for rows.Next() {
		website := &models.Website{}

		var selectors []byte

		if err := rows.Scan(&website.ID, &website.Name, &website.URL, &website.Type,
			&selectors, &website.IsActive, &website.CreatedAt, &website.UpdatedAt); err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "площадки", Cause: err}
		}

		if err := json.Unmarshal(selectors, &website.Selectors); err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "селекторов площадки", Cause: err}
		}

		websites = append(websites, website)
	}

	return websites, rows.Err()
}

func (r *WebsiteRepository) Update(ctx context.Context, website *models.Website) error {
	return r.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		querier := txs.GetQuerier(ctx, r.db.Pool)

		selectors, err := json.Marshal(website.Selectors)
		if err != nil {
			return &customerrors.ErrSQLExecution{Operation: "сериализация селекторов", Cause: err}
		}

		website.UpdatedAt = time.Now()

		updateQuery := r.sq.Update("websites").
			Set("name", website.Name).
			Set("url", website.URL).
			Set("type", website.Type).
			Set("selectors", selectors).
			Set("is_active", website.IsActive).
			Set("updated_at", website.UpdatedAt).
			Where(sq.Eq{"id": website.ID})

		query, args, err := updateQuery.ToSql()
		if err != nil {
			return &customerrors.ErrBuildSQLQuery{Operation: "обновление площадки", Cause: err}
		}

		tag, err := querier.Exec(ctx, query, args...)
		if err != nil {
			return &customerrors.ErrSQLExecution{Operation: "обновление площадки", Cause: err}
		}

		if tag.RowsAffected() == 0 {
			return &customerrors.ErrWebsiteNotFound{ID: website.ID}
		}

		return nil
	})
}
