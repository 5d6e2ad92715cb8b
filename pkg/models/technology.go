package models

import (
	"fmt"
	"strings"
	"time"
)

// MaxTitleLength is the longest accepted technology title
const MaxTitleLength = 100

// MaxNotesLength is the soft cap applied to notes at the input boundary
const MaxNotesLength = 500

// DeadlineLayout is the date-only format used for deadlines
const DeadlineLayout = "2006-01-02"

// Technology represents a single tracked technology or skill
type Technology struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	Status      Status   `json:"status"`
	Progress    int      `json:"progress"`
	Notes       string   `json:"notes"`
	Deadline    string   `json:"deadline,omitempty"`
	Resources   []string `json:"resources,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Provenance fields present when the record came from search or import
	IsExternal  bool     `json:"isExternal,omitempty"`
	ExternalURL string   `json:"externalUrl,omitempty"`
	Stars       int      `json:"stars,omitempty"`
	Language    string   `json:"language,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	OriginalID  string   `json:"originalId,omitempty"`
}

// HasNotes reports whether the record carries non-blank notes
func (t *Technology) HasNotes() bool {
	return strings.TrimSpace(t.Notes) != ""
}

// HasDeadline reports whether a deadline is set
func (t *Technology) HasDeadline() bool {
	return t.Deadline != ""
}

// DeadlineTime parses the deadline into a time value
func (t *Technology) DeadlineTime() (time.Time, error) {
	return ParseDeadline(t.Deadline)
}

// ParseDeadline accepts a date-only deadline or a full timestamp
func ParseDeadline(s string) (time.Time, error) {
	if d, err := time.Parse(DeadlineLayout, s); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline date: %q", s)
	}
	return d, nil
}

// ValidateDeadline checks the entry-time window for a new deadline:
// not in the past and no more than two years ahead. An empty deadline
// is allowed and clears the field.
func ValidateDeadline(s string, now time.Time) error {
	if s == "" {
		return nil
	}
	d, err := ParseDeadline(s)
	if err != nil {
		return err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return fmt.Errorf("deadline cannot be in the past")
	}
	if d.After(today.AddDate(2, 0, 0)) {
		return fmt.Errorf("deadline cannot be more than 2 years ahead")
	}
	return nil
}
