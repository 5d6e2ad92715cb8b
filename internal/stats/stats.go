// Package stats derives aggregate metrics from a collection snapshot.
// Every function is pure: deterministic and side-effect-free given the
// items and a clock value, so the engine recomputes on demand and needs
// no state of its own.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/example/techtracker/pkg/models"
)

// Overview computes the aggregate counts and the completion percentage.
// The percentage is 0 for an empty collection, never NaN.
func Overview(items []models.Technology) models.Overview {
	o := models.Overview{Total: len(items)}
	for _, t := range items {
		switch t.Status {
		case models.StatusCompleted:
			o.Completed++
		case models.StatusInProgress:
			o.InProgress++
		case models.StatusNotStarted:
			o.NotStarted++
		case models.StatusOnHold:
			o.OnHold++
		case models.StatusDropped:
			o.Dropped++
		}
	}
	if o.Total > 0 {
		o.ProgressPercentage = int(math.Round(float64(o.Completed) / float64(o.Total) * 100))
	}
	return o
}

// ByCategory groups completion counts by category. A key exists only if
// at least one item carries it, so Total is always >= 1 per key.
func ByCategory(items []models.Technology) map[string]models.GroupStat {
	return groupBy(items, func(t models.Technology) string { return t.Category })
}

// ByDifficulty groups completion counts by difficulty
func ByDifficulty(items []models.Technology) map[string]models.GroupStat {
	return groupBy(items, func(t models.Technology) string { return t.Difficulty })
}

func groupBy(items []models.Technology, key func(models.Technology) string) map[string]models.GroupStat {
	out := make(map[string]models.GroupStat)
	for _, t := range items {
		g := out[key(t)]
		g.Total++
		if t.Status == models.StatusCompleted {
			g.Completed++
		}
		out[key(t)] = g
	}
	return out
}

// AverageProgress returns the mean progress percentage across the
// collection, 0 when empty.
func AverageProgress(items []models.Technology) float64 {
	if len(items) == 0 {
		return 0
	}
	sum := 0
	for _, t := range items {
		sum += t.Progress
	}
	return float64(sum) / float64(len(items))
}

// UpcomingDeadlines returns the non-completed items whose deadline is on
// or after now, soonest first, truncated to limit. DaysLeft is the number
// of whole days until the deadline, rounded up.
func UpcomingDeadlines(items []models.Technology, now time.Time, limit int) []models.DeadlineEntry {
	var out []models.DeadlineEntry
	for _, t := range items {
		if !t.HasDeadline() || t.Status == models.StatusCompleted {
			continue
		}
		due, err := t.DeadlineTime()
		if err != nil {
			continue
		}
		daysLeft := DaysLeft(due, now)
		if daysLeft < 0 {
			continue
		}
		out = append(out, models.DeadlineEntry{Technology: t, DaysLeft: daysLeft, Due: due})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysLeft < out[j].DaysLeft })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DaysLeft computes ceil((due - now) / 24h)
func DaysLeft(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// RecentActivity returns the most recently updated items, newest first,
// truncated to limit. Items without an update timestamp are skipped.
func RecentActivity(items []models.Technology, limit int) []models.Technology {
	var out []models.Technology
	for _, t := range items {
		if !t.UpdatedAt.IsZero() {
			out = append(out, t)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
