package service

import (
	"context"

	"github.com/ruslanbay/codedrill/internal/domain/entities"
	"github.com/ruslanbay/codedrill/internal/infra/postgres/repository"
)

// SchedulerStore runs a function inside one atomic transaction. The store
// guarantees all-or-nothing semantics: if fn or the commit fails, no write
// is visible.
type SchedulerStore interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error
}

// ProblemCatalog answers whether a problem may enter review rotation.
type ProblemCatalog interface {
	IsReviewable(ctx context.Context, problemID string) (bool, error)
}

// ItemReader provides the read side for due queries.
type ItemReader interface {
	ActiveItemsByUser(ctx context.Context, userID string) ([]entities.SchedulingItem, error)
}

// HistoryReader provides aggregate counts over the audit trail.
type HistoryReader interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}
