package srs

import (
	"time"

	"github.com/ruslanbay/codedrill/internal/domain/entities"
)

// Buckets groups active scheduling items by how soon they are due.
type Buckets struct {
	DueNow    []entities.SchedulingItem `json:"dueNow"`
	ThisWeek  []entities.SchedulingItem `json:"dueThisWeek"`
	ThisMonth []entities.SchedulingItem `json:"dueThisMonth"`
	Later     []entities.SchedulingItem `json:"dueLater"`
}

// Total returns the number of items across all buckets.
func (b Buckets) Total() int {
	return len(b.DueNow) + len(b.ThisWeek) + len(b.ThisMonth) + len(b.Later)
}

// ProjectBuckets partitions active items by due date relative to now.
// Each bucket is half-open on its upper bound, so every active item lands in
// exactly one bucket: due now (dueAt <= now), within a week [now, now+7d),
// within a month [now+7d, now+30d), later [now+30d, inf). Inactive items and
// items without a due date are skipped.
func ProjectBuckets(items []entities.SchedulingItem, now time.Time) Buckets {
	week := now.AddDate(0, 0, 7)
	month := now.AddDate(0, 0, 30)

	var b Buckets
	for _, item := range items {
		if !item.Active || item.DueAt == nil {
			continue
		}
		due := *item.DueAt
		switch {
		case !due.After(now):
			b.DueNow = append(b.DueNow, item)
		case due.Before(week):
			b.ThisWeek = append(b.ThisWeek, item)
		case due.Before(month):
			b.ThisMonth = append(b.ThisMonth, item)
		default:
			b.Later = append(b.Later, item)
		}
	}
	return b
}
