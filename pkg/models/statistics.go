package models

import "time"

// Overview holds aggregate counts over the whole collection
type Overview struct {
	Total              int `json:"total"`
	Completed          int `json:"completed"`
	InProgress         int `json:"inProgress"`
	NotStarted         int `json:"notStarted"`
	OnHold             int `json:"onHold"`
	Dropped            int `json:"dropped"`
	ProgressPercentage int `json:"progressPercentage"`
}

// GroupStat holds per-category or per-difficulty counts
type GroupStat struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Percentage returns the completion percentage of the group
func (g GroupStat) Percentage() int {
	if g.Total == 0 {
		return 0
	}
	return int(float64(g.Completed)/float64(g.Total)*100 + 0.5)
}

// DeadlineEntry is a technology paired with the days left until its deadline
type DeadlineEntry struct {
	Technology Technology `json:"technology"`
	DaysLeft   int        `json:"daysLeft"`
	Due        time.Time  `json:"due"`
}
