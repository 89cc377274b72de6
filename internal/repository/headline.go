package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/models"
)

const headlineColumns = "id, headline, category, created_at, keywords_used, enhanced"

const insertHeadlineSQL = `INSERT INTO headlines (` + headlineColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

type HeadlineRepository struct {
	db     *sql.DB
	now    func() time.Time
	logger logger.Logger
}

func NewHeadlineRepository(db *sql.DB, log logger.Logger) *HeadlineRepository {
	return &HeadlineRepository{
		db:     db,
		now:    time.Now,
		logger: log.WithFields(map[string]interface{}{"repository": "headlines"}),
	}
}

// prepare assigns an id and a creation time when missing.
func (r *HeadlineRepository) prepare(h *models.Headline) ([]byte, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = r.now()
	}
	used := h.KeywordsUsed
	if used == nil {
		used = map[string]string{}
	}
	return json.Marshal(used)
}

// Save stores one headline and returns its id.
func (r *HeadlineRepository) Save(ctx context.Context, h *models.Headline) (string, error) {
	used, err := r.prepare(h)
	if err != nil {
		return "", apperrors.NewPersistenceError("save headline", err)
	}

	if _, err := r.db.ExecContext(ctx, insertHeadlineSQL,
		h.ID, h.Text, h.Category, h.CreatedAt, used, h.Enhanced,
	); err != nil {
		return "", apperrors.NewPersistenceError("save headline", err)
	}
	return h.ID, nil
}

// SaveBatch stores headlines in one transaction and returns their ids in
// input order. The slice elements receive their assigned ids.
func (r *HeadlineRepository) SaveBatch(ctx context.Context, headlines []models.Headline) ([]string, error) {
	if len(headlines) == 0 {
		return []string{}, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewPersistenceError("begin headline batch", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertHeadlineSQL)
	if err != nil {
		return nil, apperrors.NewPersistenceError("prepare headline batch", err)
	}
	defer stmt.Close()

	ids := make([]string, 0, len(headlines))
	for i := range headlines {
		h := &headlines[i]
		used, err := r.prepare(h)
		if err != nil {
			return nil, apperrors.NewPersistenceError("encode headline batch", err)
		}
		if _, err := stmt.ExecContext(ctx, h.ID, h.Text, h.Category, h.CreatedAt, used, h.Enhanced); err != nil {
			return nil, apperrors.NewPersistenceError("insert headline batch", err)
		}
		ids = append(ids, h.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewPersistenceError("commit headline batch", err)
	}

	r.logger.Debug("headline batch saved", map[string]interface{}{"count": len(ids)})
	return ids, nil
}

// Find lists headlines matching filter.
func (r *HeadlineRepository) Find(ctx context.Context, filter models.HeadlineFilter, page models.Page) ([]models.Headline, error) {
	where, args := whereClause(filter)
	if page.Limit <= 0 {
		page.Limit = models.DefaultPage().Limit
	}

	query := "SELECT " + headlineColumns + " FROM headlines" + where + orderClause(page) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.Limit, max(page.Skip, 0))

	return r.query(ctx, query, args...)
}

// SearchText runs a full-text match, falling back to substring matching
// for text the simple parser does not split (such as CJK).
func (r *HeadlineRepository) SearchText(ctx context.Context, text string, limit int) ([]models.Headline, error) {
	if limit <= 0 {
		limit = 20
	}
	query := "SELECT " + headlineColumns + ` FROM headlines
		WHERE to_tsvector('simple', headline) @@ plainto_tsquery('simple', $1)
		   OR headline ILIKE $2 ESCAPE '\'
		ORDER BY created_at DESC LIMIT $3`
	return r.query(ctx, query, text, containsPattern(text), limit)
}

func (r *HeadlineRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Headline, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("query headlines", err)
	}
	defer rows.Close()

	out := []models.Headline{}
	for rows.Next() {
		var h models.Headline
		var used []byte
		if err := rows.Scan(&h.ID, &h.Text, &h.Category, &h.CreatedAt, &used, &h.Enhanced); err != nil {
			return nil, apperrors.NewPersistenceError("scan headline", err)
		}
		if len(used) > 0 {
			if err := json.Unmarshal(used, &h.KeywordsUsed); err != nil {
				return nil, apperrors.NewPersistenceError("decode keywords_used", err)
			}
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("iterate headlines", err)
	}
	return out, nil
}

// Count returns the number of headlines matching filter.
func (r *HeadlineRepository) Count(ctx context.Context, filter models.HeadlineFilter) (int64, error) {
	where, args := whereClause(filter)

	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM headlines"+where, args...).Scan(&n); err != nil {
		return 0, apperrors.NewPersistenceError("count headlines", err)
	}
	return n, nil
}

// Delete removes one headline and reports whether it existed.
func (r *HeadlineRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM headlines WHERE id = $1", id)
	if err != nil {
		return false, apperrors.NewPersistenceError("delete headline", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.NewPersistenceError("delete headline", err)
	}
	return n > 0, nil
}

// DeleteByFilter removes matching headlines. An empty filter is refused so
// a missing query parameter cannot wipe the table.
func (r *HeadlineRepository) DeleteByFilter(ctx context.Context, filter models.HeadlineFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, apperrors.NewEmptyInputError("delete filter")
	}
	where, args := whereClause(filter)

	res, err := r.db.ExecContext(ctx, "DELETE FROM headlines"+where, args...)
	if err != nil {
		return 0, apperrors.NewPersistenceError("delete headlines", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.NewPersistenceError("delete headlines", err)
	}

	r.logger.Info("headlines deleted", map[string]interface{}{"count": n})
	return n, nil
}
