package repository

import (
	"context"
	"fmt"

	"github.com/ruslanbay/codedrill/internal/domain/entities"
)

// ReviewHistoryRepository provides access to the append-only review audit
// trail. Rows are only ever inserted, never updated.
type ReviewHistoryRepository struct {
	db DBTX
}

// NewReviewHistoryRepository creates a repository bound to a pool or an open
// transaction.
func NewReviewHistoryRepository(db DBTX) *ReviewHistoryRepository {
	return &ReviewHistoryRepository{db: db}
}

// AppendHistory inserts one audit entry and assigns its identifier.
func (r *ReviewHistoryRepository) AppendHistory(ctx context.Context, entry *entities.ReviewHistoryEntry) error {
	query := `
		INSERT INTO review_history (scheduling_item_id, occurred_at, outcome, level_before, level_after)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		entry.SchedulingItemID,
		entry.OccurredAt,
		string(entry.Outcome),
		entry.LevelBefore,
		entry.LevelAfter,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("append review history: %w", err)
	}
	return nil
}

// CountByUser returns the number of recorded outcomes across all of the
// user's items, active or not.
func (r *ReviewHistoryRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM review_history h
		JOIN scheduling_items i ON i.id = h.scheduling_item_id
		WHERE i.user_id = $1
	`
	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count review history: %w", err)
	}
	return count, nil
}

// EntriesByItem returns an item's audit trail in chronological order.
func (r *ReviewHistoryRepository) EntriesByItem(ctx context.Context, schedulingItemID string) ([]entities.ReviewHistoryEntry, error) {
	query := `
		SELECT id, scheduling_item_id, occurred_at, outcome, level_before, level_after
		FROM review_history
		WHERE scheduling_item_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, schedulingItemID)
	if err != nil {
		return nil, fmt.Errorf("entries by item: %w", err)
	}
	defer rows.Close()

	var entries []entities.ReviewHistoryEntry
	for rows.Next() {
		var entry entities.ReviewHistoryEntry
		var outcome string
		if err := rows.Scan(
			&entry.ID,
			&entry.SchedulingItemID,
			&entry.OccurredAt,
			&outcome,
			&entry.LevelBefore,
			&entry.LevelAfter,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entry.Outcome = entities.Outcome(outcome)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
