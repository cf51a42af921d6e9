package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ruslanbay/codedrill/internal/srs"
)

// Stats is a read-only aggregate over a user's scheduling state.
// TotalReviewed counts history rows, not items: an item reviewed five times
// contributes five here and one to ByLevel.
type Stats struct {
	ByLevel       map[int]int `json:"byLevel"`
	DueNow        int         `json:"dueNow"`
	DueThisWeek   int         `json:"dueThisWeek"`
	ActiveItems   int         `json:"activeItems"`
	TotalReviewed int         `json:"totalReviewed"`
}

// DueQuery answers "what's due" questions. It never mutates state and never
// fails on missing data: a user with no items gets empty buckets and zero
// counts.
type DueQuery struct {
	items   ItemReader
	history HistoryReader
	clock   func() time.Time
}

// NewDueQuery creates a DueQuery over the read-side repositories.
func NewDueQuery(items ItemReader, history HistoryReader) *DueQuery {
	return &DueQuery{
		items:   items,
		history: history,
		clock:   time.Now,
	}
}

// Buckets partitions the user's active items by due date relative to now.
func (q *DueQuery) Buckets(ctx context.Context, userID string) (srs.Buckets, error) {
	if userID == "" {
		return srs.Buckets{}, fmt.Errorf("%w: missing user id", ErrInvalidInput)
	}

	items, err := q.items.ActiveItemsByUser(ctx, userID)
	if err != nil {
		return srs.Buckets{}, fmt.Errorf("load active items: %w", err)
	}
	return srs.ProjectBuckets(items, q.clock().UTC()), nil
}

// Stats aggregates the user's active items by level and counts recorded
// outcomes.
func (q *DueQuery) Stats(ctx context.Context, userID string) (*Stats, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidInput)
	}

	items, err := q.items.ActiveItemsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load active items: %w", err)
	}

	reviewed, err := q.history.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	buckets := srs.ProjectBuckets(items, q.clock().UTC())

	stats := &Stats{
		ByLevel:       make(map[int]int),
		DueNow:        len(buckets.DueNow),
		DueThisWeek:   len(buckets.DueNow) + len(buckets.ThisWeek),
		ActiveItems:   len(items),
		TotalReviewed: reviewed,
	}
	for _, item := range items {
		stats.ByLevel[item.Level]++
	}
	return stats, nil
}
