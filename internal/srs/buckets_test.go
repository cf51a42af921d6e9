package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslanbay/codedrill/internal/domain/entities"
)

func itemDueIn(id string, now time.Time, offset time.Duration) entities.SchedulingItem {
	due := now.Add(offset)
	return entities.SchedulingItem{ID: id, UserID: "u1", ProblemID: id, Active: true, DueAt: &due}
}

func TestProjectBuckets_Partition(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	items := []entities.SchedulingItem{
		itemDueIn("overdue", now, -48*time.Hour),
		itemDueIn("exactly-now", now, 0),
		itemDueIn("tomorrow", now, 24*time.Hour),
		itemDueIn("in-six-days", now, 6*24*time.Hour),
		itemDueIn("in-seven-days", now, 7*24*time.Hour), // lower bound of the month bucket
		itemDueIn("in-29-days", now, 29*24*time.Hour),
		itemDueIn("in-30-days", now, 30*24*time.Hour), // lower bound of later
		itemDueIn("in-a-year", now, 365*24*time.Hour),
	}

	b := ProjectBuckets(items, now)

	ids := func(items []entities.SchedulingItem) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.ID)
		}
		return out
	}

	assert.Equal(t, []string{"overdue", "exactly-now"}, ids(b.DueNow))
	assert.Equal(t, []string{"tomorrow", "in-six-days"}, ids(b.ThisWeek))
	assert.Equal(t, []string{"in-seven-days", "in-29-days"}, ids(b.ThisMonth))
	assert.Equal(t, []string{"in-30-days", "in-a-year"}, ids(b.Later))

	// Every active item lands in exactly one bucket.
	require.Equal(t, len(items), b.Total())
	seen := make(map[string]int)
	for _, bucket := range [][]entities.SchedulingItem{b.DueNow, b.ThisWeek, b.ThisMonth, b.Later} {
		for _, it := range bucket {
			seen[it.ID]++
		}
	}
	for _, it := range items {
		assert.Equal(t, 1, seen[it.ID], "item %s", it.ID)
	}
}

func TestProjectBuckets_SkipsInactiveAndUnscheduled(t *testing.T) {
	now := time.Now().UTC()

	inactive := itemDueIn("inactive", now, time.Hour)
	inactive.Active = false
	unscheduled := entities.SchedulingItem{ID: "unscheduled", Active: true}

	b := ProjectBuckets([]entities.SchedulingItem{inactive, unscheduled}, now)
	assert.Zero(t, b.Total())
}

func TestProjectBuckets_Empty(t *testing.T) {
	b := ProjectBuckets(nil, time.Now())
	assert.Zero(t, b.Total())
}
