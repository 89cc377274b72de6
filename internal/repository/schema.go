// Package repository persists headlines, templates and keywords in Postgres.
package repository

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS headlines (
		id            UUID PRIMARY KEY,
		headline      TEXT NOT NULL,
		category      TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		keywords_used JSONB NOT NULL DEFAULT '{}'::jsonb,
		enhanced      BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_headlines_created_at ON headlines (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_headlines_category ON headlines (category)`,
	`CREATE INDEX IF NOT EXISTS idx_headlines_text ON headlines USING GIN (to_tsvector('simple', headline))`,
	`CREATE TABLE IF NOT EXISTS templates (
		id       SERIAL PRIMARY KEY,
		template TEXT NOT NULL,
		category TEXT NOT NULL,
		UNIQUE (template, category)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_templates_category ON templates (category)`,
	`CREATE TABLE IF NOT EXISTS keyword_categories (
		category TEXT PRIMARY KEY,
		words    TEXT[] NOT NULL DEFAULT '{}'
	)`,
}

// CreateSchema creates the tables and indexes if they do not exist.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
