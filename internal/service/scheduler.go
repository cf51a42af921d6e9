package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ruslanbay/codedrill/internal/domain/entities"
	"github.com/ruslanbay/codedrill/internal/infra/postgres/repository"
	"github.com/ruslanbay/codedrill/internal/srs"
)

var (
	// ErrInvalidInput rejects malformed requests before any transaction begins.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotSchedulable rejects reviews of problems that are not eligible for
	// rotation.
	ErrNotSchedulable = errors.New("problem is not schedulable")

	// ErrAlreadyScheduled rejects adding a pair that already has an active item.
	ErrAlreadyScheduled = errors.New("pair is already scheduled")

	// ErrTransientStore is surfaced when the store could not commit after the
	// bounded retries. It aliases the repository sentinel so errors.Is works
	// across layers; no partial state was written.
	ErrTransientStore = repository.ErrTransient
)

const (
	maxTxAttempts  = 3
	retryBaseDelay = 50 * time.Millisecond
)

// ReviewResult is the caller-visible effect of one recorded outcome.
type ReviewResult struct {
	NewLevel int       `json:"newLevel"`
	DueAt    time.Time `json:"dueAt"`
}

// AddResult reports when a newly scheduled pair comes due.
type AddResult struct {
	DueAt time.Time `json:"dueAt"`
}

// Scheduler is the only component that mutates scheduling state. All three
// operations run their writes inside one store transaction per call.
type Scheduler struct {
	store    SchedulerStore
	problems ProblemCatalog
	clock    func() time.Time
}

// NewScheduler creates a Scheduler over the given store and problem catalog.
func NewScheduler(store SchedulerStore, problems ProblemCatalog) *Scheduler {
	return &Scheduler{
		store:    store,
		problems: problems,
		clock:    time.Now,
	}
}

// RecordReview applies one review outcome to the pair's item, creating the
// item at level 0 if this is the first review-worthy event for the pair.
// The item update and the history append commit together or not at all.
func (s *Scheduler) RecordReview(ctx context.Context, userID, problemID string, outcome entities.Outcome) (*ReviewResult, error) {
	if err := validatePair(userID, problemID); err != nil {
		return nil, err
	}
	if !outcome.Valid() {
		return nil, fmt.Errorf("%w: unknown outcome %q", ErrInvalidInput, outcome)
	}
	if err := s.checkReviewable(ctx, problemID); err != nil {
		return nil, err
	}

	// One clock read per invocation: lastReviewedAt, the history timestamp
	// and the due-date anchor all agree.
	now := s.clock().UTC()

	var result ReviewResult
	err := s.withRetry(ctx, func() error {
		return s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			item, err := tx.ItemForUpdate(ctx, userID, problemID)
			if errors.Is(err, repository.ErrItemNotFound) {
				item = entities.NewSchedulingItem(userID, problemID)
				if err := tx.CreateItem(ctx, item); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			levelBefore := item.Level
			levelAfter := srs.NextLevel(levelBefore, outcome)
			dueAt := srs.NextDueDate(levelAfter, now)

			item.Level = levelAfter
			item.DueAt = &dueAt
			item.LastReviewedAt = &now
			item.Active = true
			if err := tx.UpdateItem(ctx, item); err != nil {
				return err
			}

			entry := &entities.ReviewHistoryEntry{
				SchedulingItemID: item.ID,
				OccurredAt:       now,
				Outcome:          outcome,
				LevelBefore:      levelBefore,
				LevelAfter:       levelAfter,
			}
			if err := tx.AppendHistory(ctx, entry); err != nil {
				return err
			}

			result = ReviewResult{NewLevel: levelAfter, DueAt: dueAt}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AddToReview puts a pair into rotation at the given level, reactivating an
// inactive item if one exists. An active item for the pair is a precondition
// failure, not a silent no-op: the caller is expected to check first.
func (s *Scheduler) AddToReview(ctx context.Context, userID, problemID string, initialLevel int) (*AddResult, error) {
	if err := validatePair(userID, problemID); err != nil {
		return nil, err
	}
	if err := s.checkReviewable(ctx, problemID); err != nil {
		return nil, err
	}

	initialLevel = srs.ClampLevel(initialLevel)
	now := s.clock().UTC()
	dueAt := srs.NextDueDate(initialLevel, now)

	err := s.withRetry(ctx, func() error {
		return s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			item, err := tx.ItemForUpdate(ctx, userID, problemID)
			switch {
			case err == nil:
				if item.Active {
					return ErrAlreadyScheduled
				}
				item.Level = initialLevel
				item.DueAt = &dueAt
				item.LastReviewedAt = &now
				item.Active = true
				if err := tx.UpdateItem(ctx, item); err != nil {
					return err
				}
			case errors.Is(err, repository.ErrItemNotFound):
				item = &entities.SchedulingItem{
					UserID:         userID,
					ProblemID:      problemID,
					Level:          initialLevel,
					DueAt:          &dueAt,
					LastReviewedAt: &now,
					Active:         true,
				}
				if err := tx.CreateItem(ctx, item); err != nil {
					return err
				}
			default:
				return err
			}

			// Synthetic entry marking the act of entering rotation; it counts
			// as review #1 for the pair.
			entry := &entities.ReviewHistoryEntry{
				SchedulingItemID: item.ID,
				OccurredAt:       now,
				Outcome:          entities.OutcomePass,
				LevelBefore:      initialLevel,
				LevelAfter:       initialLevel,
			}
			return tx.AppendHistory(ctx, entry)
		})
	})
	if err != nil {
		return nil, err
	}
	return &AddResult{DueAt: dueAt}, nil
}

// RemoveFromReview takes the pair out of rotation. History and identity are
// kept; removing an already inactive or absent pair is a no-op.
func (s *Scheduler) RemoveFromReview(ctx context.Context, userID, problemID string) error {
	if err := validatePair(userID, problemID); err != nil {
		return err
	}

	return s.withRetry(ctx, func() error {
		return s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			return tx.DeactivateItem(ctx, userID, problemID)
		})
	})
}

func (s *Scheduler) checkReviewable(ctx context.Context, problemID string) error {
	ok, err := s.problems.IsReviewable(ctx, problemID)
	if err != nil {
		return fmt.Errorf("check problem: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: problem %s", ErrNotSchedulable, problemID)
	}
	return nil
}

// withRetry reruns op from scratch on transient store failures. Retrying is
// safe because a failed transaction left no partial write.
func (s *Scheduler) withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = op()
		if err == nil || !errors.Is(err, repository.ErrTransient) {
			return err
		}
		if attempt == maxTxAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBaseDelay):
		}
	}
}

func validatePair(userID, problemID string) error {
	if userID == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidInput)
	}
	if problemID == "" {
		return fmt.Errorf("%w: missing problem id", ErrInvalidInput)
	}
	return nil
}
