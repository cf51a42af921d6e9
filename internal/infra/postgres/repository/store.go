package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ruslanbay/codedrill/internal/domain/entities"
)

var (
	// ErrItemNotFound is returned when no scheduling item exists for a pair.
	ErrItemNotFound = errors.New("scheduling item not found")

	// ErrTransient marks store failures that left no partial state behind;
	// the whole operation can be retried from scratch.
	ErrTransient = errors.New("transient store failure")
)

// DBTX is the subset of pgx methods shared by *pgxpool.Pool and pgx.Tx, so
// the same repository code runs inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx exposes the row operations available inside one open transaction.
// The scheduling item row for a pair is locked for the duration of the
// transaction, so concurrent calls for the same pair serialize.
type Tx interface {
	ItemForUpdate(ctx context.Context, userID, problemID string) (*entities.SchedulingItem, error)
	CreateItem(ctx context.Context, item *entities.SchedulingItem) error
	UpdateItem(ctx context.Context, item *entities.SchedulingItem) error
	DeactivateItem(ctx context.Context, userID, problemID string) error
	AppendHistory(ctx context.Context, entry *entities.ReviewHistoryEntry) error
}

// Store runs multi-row read-modify-write operations inside one atomic
// transaction.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store on top of the provided connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// txRepositories bundles the repositories bound to one open transaction.
type txRepositories struct {
	*SchedulingItemRepository
	*ReviewHistoryRepository
}

// WithinTx executes fn inside a single transaction. Either every write fn
// performs commits, or none does. Conflicts and connection-level failures
// come back wrapped in ErrTransient.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	pgxTx, err := s.pool.Begin(ctx)
	if err != nil {
		return classify(fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = pgxTx.Rollback(ctx) }()

	repos := &txRepositories{
		SchedulingItemRepository: NewSchedulingItemRepository(pgxTx),
		ReviewHistoryRepository:  NewReviewHistoryRepository(pgxTx),
	}

	if err := fn(ctx, repos); err != nil {
		return classify(err)
	}

	if err := pgxTx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// classify tags lock conflicts and timeouts as transient so callers can
// retry the whole operation; everything else passes through unchanged.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrTransient) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}

	return err
}
