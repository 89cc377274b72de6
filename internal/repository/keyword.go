package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/models"
)

// KeywordRepository stores one row per keyword category with its words
// in a text array.
type KeywordRepository struct {
	db *sql.DB
}

func NewKeywordRepository(db *sql.DB) *KeywordRepository {
	return &KeywordRepository{db: db}
}

func (r *KeywordRepository) GetKeywordsByCategory(ctx context.Context, category string) (*models.KeywordCategory, error) {
	var words []string
	err := r.db.QueryRowContext(ctx,
		`SELECT words FROM keyword_categories WHERE category = $1`, category,
	).Scan(pq.Array(&words))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("get keywords", err)
	}
	return &models.KeywordCategory{Name: category, Words: words}, nil
}

func (r *KeywordRepository) SaveKeywordCategory(ctx context.Context, category string, words []string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO keyword_categories (category, words) VALUES ($1, $2)
		ON CONFLICT (category) DO UPDATE SET words = EXCLUDED.words`,
		category, pq.Array(words))
	if err != nil {
		return apperrors.NewPersistenceError("save keyword category", err)
	}
	return nil
}

func (r *KeywordRepository) AppendKeywords(ctx context.Context, category string, words ...string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO keyword_categories (category, words) VALUES ($1, $2)
		ON CONFLICT (category) DO UPDATE SET words = keyword_categories.words || EXCLUDED.words`,
		category, pq.Array(words))
	if err != nil {
		return apperrors.NewPersistenceError("append keywords", err)
	}
	return nil
}

func (r *KeywordRepository) CountCategories(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM keyword_categories`).Scan(&n); err != nil {
		return 0, apperrors.NewPersistenceError("count keyword categories", err)
	}
	return n, nil
}
