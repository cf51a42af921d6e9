package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ruslanbay/codedrill/internal/domain/entities"
)

const schedulingItemColumns = `id, user_id, problem_id, level, last_reviewed_at, due_at, active`

// SchedulingItemRepository provides access to per-(user, problem) scheduling
// state.
type SchedulingItemRepository struct {
	db DBTX
}

// NewSchedulingItemRepository creates a repository bound to a pool or an open
// transaction.
func NewSchedulingItemRepository(db DBTX) *SchedulingItemRepository {
	return &SchedulingItemRepository{db: db}
}

// ItemForUpdate loads the item for a pair and locks its row until the
// surrounding transaction ends.
func (r *SchedulingItemRepository) ItemForUpdate(ctx context.Context, userID, problemID string) (*entities.SchedulingItem, error) {
	query := `
		SELECT ` + schedulingItemColumns + `
		FROM scheduling_items
		WHERE user_id = $1 AND problem_id = $2
		FOR UPDATE
	`
	return r.scanItem(r.db.QueryRow(ctx, query, userID, problemID))
}

// Item loads the item for a pair without locking.
func (r *SchedulingItemRepository) Item(ctx context.Context, userID, problemID string) (*entities.SchedulingItem, error) {
	query := `
		SELECT ` + schedulingItemColumns + `
		FROM scheduling_items
		WHERE user_id = $1 AND problem_id = $2
	`
	return r.scanItem(r.db.QueryRow(ctx, query, userID, problemID))
}

// CreateItem inserts a new item, assigning its identifier. A concurrent
// insert for the same pair loses against the unique index and is reported as
// transient so the caller retries and finds the winner's row.
func (r *SchedulingItemRepository) CreateItem(ctx context.Context, item *entities.SchedulingItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	query := `
		INSERT INTO scheduling_items (id, user_id, problem_id, level, last_reviewed_at, due_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, problem_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		item.ID,
		item.UserID,
		item.ProblemID,
		item.Level,
		item.LastReviewedAt,
		item.DueAt,
		item.Active,
	)
	if err != nil {
		return fmt.Errorf("create scheduling item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: concurrent create for pair (%s, %s)", ErrTransient, item.UserID, item.ProblemID)
	}
	return nil
}

// UpdateItem persists the mutable fields of an existing item.
func (r *SchedulingItemRepository) UpdateItem(ctx context.Context, item *entities.SchedulingItem) error {
	query := `
		UPDATE scheduling_items SET
			level = $1,
			last_reviewed_at = $2,
			due_at = $3,
			active = $4,
			updated_at = now()
		WHERE id = $5
	`
	tag, err := r.db.Exec(ctx, query,
		item.Level,
		item.LastReviewedAt,
		item.DueAt,
		item.Active,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update scheduling item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// DeactivateItem takes the pair's item out of rotation. A missing or already
// inactive item is not an error.
func (r *SchedulingItemRepository) DeactivateItem(ctx context.Context, userID, problemID string) error {
	query := `
		UPDATE scheduling_items SET
			active = FALSE,
			due_at = NULL,
			updated_at = now()
		WHERE user_id = $1 AND problem_id = $2 AND active
	`
	if _, err := r.db.Exec(ctx, query, userID, problemID); err != nil {
		return fmt.Errorf("deactivate scheduling item: %w", err)
	}
	return nil
}

// ActiveItemsByUser returns the user's active items ordered by due date.
func (r *SchedulingItemRepository) ActiveItemsByUser(ctx context.Context, userID string) ([]entities.SchedulingItem, error) {
	query := `
		SELECT ` + schedulingItemColumns + `
		FROM scheduling_items
		WHERE user_id = $1 AND active
		ORDER BY due_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("active items by user: %w", err)
	}
	defer rows.Close()

	var items []entities.SchedulingItem
	for rows.Next() {
		var item entities.SchedulingItem
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProblemID,
			&item.Level,
			&item.LastReviewedAt,
			&item.DueAt,
			&item.Active,
		); err != nil {
			return nil, fmt.Errorf("scan scheduling item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *SchedulingItemRepository) scanItem(row pgx.Row) (*entities.SchedulingItem, error) {
	var item entities.SchedulingItem
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.ProblemID,
		&item.Level,
		&item.LastReviewedAt,
		&item.DueAt,
		&item.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get scheduling item: %w", err)
	}
	return &item, nil
}
