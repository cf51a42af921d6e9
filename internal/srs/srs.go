// Package srs holds the spaced-repetition policy: the interval table, the
// level transition function and the due-date projection. Everything here is
// a pure function of its arguments; the clock is always supplied by the
// caller.
package srs

import (
	"time"

	"github.com/ruslanbay/codedrill/internal/domain/entities"
)

// MaxLevel is the highest mastery level an item can reach.
const MaxLevel = 7

// reviewIntervals maps a mastery level to the number of days until the next
// review. Early levels repeat almost immediately, later levels back off
// sharply.
var reviewIntervals = []int{1, 1, 2, 3, 5, 8, 13, 21}

// DaysForLevel returns the review interval in days for a mastery level.
// Levels outside the table clamp to its edges.
func DaysForLevel(level int) int {
	if level < 0 {
		level = 0
	}
	if level >= len(reviewIntervals) {
		level = len(reviewIntervals) - 1
	}
	return reviewIntervals[level]
}

// ClampLevel forces a level into the valid [0, MaxLevel] range.
func ClampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// NextLevel applies a review outcome to the current mastery level. The result
// is always within [0, MaxLevel].
func NextLevel(current int, outcome entities.Outcome) int {
	current = ClampLevel(current)

	switch outcome {
	case entities.OutcomeAgain:
		// Hard reset: the learner signalled "no idea", not a small mistake.
		return 0
	case entities.OutcomeFail:
		return ClampLevel(current - 1)
	case entities.OutcomeEasy:
		return ClampLevel(current + 2)
	case entities.OutcomePass:
		return ClampLevel(current + 1)
	default:
		// Outcomes are validated at the boundary; anything else leaves the
		// level unchanged.
		return current
	}
}

// NextDueDate projects the next review time for the level just reached.
// The anchor is the time of the review being recorded, not "now" at some
// later read.
func NextDueDate(newLevel int, anchor time.Time) time.Time {
	return anchor.AddDate(0, 0, DaysForLevel(newLevel))
}
