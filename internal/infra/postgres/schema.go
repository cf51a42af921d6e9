package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitSchema creates the scheduler tables if they do not exist yet.
//
// Problem content is owned by the catalog CRUD endpoints; the scheduler only
// needs the tables to exist so the eligibility check and the foreign key on
// scheduling_items have something to reference.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS problems (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS problem_topics (
			problem_id TEXT NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
			topic TEXT NOT NULL,
			PRIMARY KEY (problem_id, topic)
		)`,
		`CREATE TABLE IF NOT EXISTS scheduling_items (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			problem_id TEXT NOT NULL REFERENCES problems(id),
			level INT NOT NULL DEFAULT 0,
			last_reviewed_at TIMESTAMPTZ,
			due_at TIMESTAMPTZ,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, problem_id)
		)`,
		`CREATE TABLE IF NOT EXISTS review_history (
			id BIGSERIAL PRIMARY KEY,
			scheduling_item_id UUID NOT NULL REFERENCES scheduling_items(id) ON DELETE CASCADE,
			occurred_at TIMESTAMPTZ NOT NULL,
			outcome TEXT NOT NULL,
			level_before INT NOT NULL,
			level_after INT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_history_item
			ON review_history (scheduling_item_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_scheduling_items_user_due
			ON scheduling_items (user_id, due_at) WHERE active`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
