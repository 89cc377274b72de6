package repository

import (
	"context"
	"database/sql"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/models"
)

type TemplateRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewTemplateRepository(db *sql.DB, log logger.Logger) *TemplateRepository {
	return &TemplateRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"repository": "templates"}),
	}
}

// SaveTemplates inserts templates, skipping exact duplicates, and returns
// how many rows were added.
func (r *TemplateRepository) SaveTemplates(ctx context.Context, templates []models.Template) (int, error) {
	if len(templates) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.NewPersistenceError("begin template batch", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO templates (template, category) VALUES ($1, $2) ON CONFLICT (template, category) DO NOTHING`)
	if err != nil {
		return 0, apperrors.NewPersistenceError("prepare template batch", err)
	}
	defer stmt.Close()

	added := 0
	for _, t := range templates {
		res, err := stmt.ExecContext(ctx, t.Text, t.Category)
		if err != nil {
			return 0, apperrors.NewPersistenceError("insert template", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.NewPersistenceError("commit template batch", err)
	}
	return added, nil
}

// All returns every stored template.
func (r *TemplateRepository) All(ctx context.Context) ([]models.Template, error) {
	return r.list(ctx, `SELECT template, category FROM templates ORDER BY id`)
}

// ByCategory returns the templates of one category.
func (r *TemplateRepository) ByCategory(ctx context.Context, category string) ([]models.Template, error) {
	return r.list(ctx, `SELECT template, category FROM templates WHERE category = $1 ORDER BY id`, category)
}

// RandomTemplates samples up to n templates, optionally within category.
func (r *TemplateRepository) RandomTemplates(ctx context.Context, category string, n int) ([]models.Template, error) {
	if n <= 0 {
		n = 1
	}
	if category == "" {
		return r.list(ctx, `SELECT template, category FROM templates ORDER BY random() LIMIT $1`, n)
	}
	return r.list(ctx, `SELECT template, category FROM templates WHERE category = $1 ORDER BY random() LIMIT $2`, category, n)
}

// Count returns the number of stored templates.
func (r *TemplateRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates`).Scan(&n); err != nil {
		return 0, apperrors.NewPersistenceError("count templates", err)
	}
	return n, nil
}

func (r *TemplateRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Template, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("query templates", err)
	}
	defer rows.Close()

	var out []models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.Text, &t.Category); err != nil {
			return nil, apperrors.NewPersistenceError("scan template", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("iterate templates", err)
	}
	return out, nil
}
