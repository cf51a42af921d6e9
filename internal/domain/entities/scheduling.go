package entities

import (
	"fmt"
	"time"
)

// Outcome is the result of a single review attempt.
type Outcome string

const (
	OutcomeAgain Outcome = "again" // complete blank, learner asked for a hard reset
	OutcomeFail  Outcome = "fail"  // ordinary unsuccessful review
	OutcomePass  Outcome = "pass"  // ordinary successful review
	OutcomeEasy  Outcome = "easy"  // successful review that felt trivial
)

// Valid reports whether o is one of the four known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeAgain, OutcomeFail, OutcomePass, OutcomeEasy:
		return true
	}
	return false
}

// ParseOutcome converts a wire value into an Outcome. Unknown values are a
// validation failure and must be rejected before any transaction begins.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(s)
	if !o.Valid() {
		return "", fmt.Errorf("unknown outcome %q", s)
	}
	return o, nil
}

// SchedulingItem is the persisted review state of one (user, problem) pair.
// At most one item exists per pair; the persistence layer enforces this with
// a unique index.
type SchedulingItem struct {
	ID        string
	UserID    string
	ProblemID string

	Level          int        // mastery level, 0..srs.MaxLevel
	LastReviewedAt *time.Time // nil until the first recorded outcome
	DueAt          *time.Time // nil when the item is out of rotation
	Active         bool       // whether the item participates in due queries
}

// NewSchedulingItem returns a fresh, not yet scheduled item for a pair.
// The ID is assigned by the store on creation.
func NewSchedulingItem(userID, problemID string) *SchedulingItem {
	return &SchedulingItem{
		UserID:    userID,
		ProblemID: problemID,
		Level:     0,
	}
}

// ReviewHistoryEntry is one immutable audit row per recorded outcome.
// Entries are only ever appended, in the same transaction as the owning
// item's update.
type ReviewHistoryEntry struct {
	ID               int64
	SchedulingItemID string
	OccurredAt       time.Time
	Outcome          Outcome
	LevelBefore      int
	LevelAfter       int
}
