package models

// Status represents the learning-progress state of a technology
type Status string

const (
	// StatusNotStarted means learning has not begun yet
	StatusNotStarted Status = "not-started"
	// StatusInProgress means the technology is actively being learned
	StatusInProgress Status = "in-progress"
	// StatusOnHold means learning is paused
	StatusOnHold Status = "on-hold"
	// StatusCompleted means the technology has been learned
	StatusCompleted Status = "completed"
	// StatusDropped means the technology was abandoned
	StatusDropped Status = "dropped"
)

// AllStatuses lists every valid status value
var AllStatuses = []Status{
	StatusNotStarted,
	StatusInProgress,
	StatusOnHold,
	StatusCompleted,
	StatusDropped,
}

// ValidStatus reports whether s is one of the closed status set
func ValidStatus(s Status) bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// NextStatus returns the next step along the learning chain
// not-started -> in-progress -> completed. The second return value is
// false when the status is terminal or not part of the chain.
func NextStatus(s Status) (Status, bool) {
	switch s {
	case StatusNotStarted:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusCompleted, true
	default:
		return s, false
	}
}
