// Package importer validates and merges externally supplied export
// documents into the collection. This is the only place untrusted data
// enters the system, so parsing and validation never raise past the
// package boundary: malformed input is reduced to error values and
// structured results.
package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/techtracker/internal/store"
	"github.com/example/techtracker/pkg/models"
)

// Document is a loosely typed inbound export document. Technologies stays
// raw until validation so a missing or non-list value can be reported as
// a document-level error instead of a parse failure.
type Document struct {
	Version      interface{}     `json:"version"`
	ExportedAt   string          `json:"exportedAt"`
	Technologies json.RawMessage `json:"technologies"`
}

// Record is one inbound technology. ID and Progress accept any JSON type;
// exports from other tools use numbers and strings interchangeably.
type Record struct {
	ID          interface{} `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Difficulty  string      `json:"difficulty"`
	Status      string      `json:"status"`
	Progress    interface{} `json:"progress"`
	Deadline    string      `json:"deadline"`
	Notes       string      `json:"notes"`
	Resources   []string    `json:"resources"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
}

// ValidationResult reports the outcome of document validation. Data is
// the unmodified document when valid, nil otherwise.
type ValidationResult struct {
	IsValid bool
	Errors  []string
	Data    *Document
}

// Summary describes what an applied import added to the store
type Summary struct {
	Imported      int
	WithDeadlines int
	WithNotes     int
	Completed     int
}

// Parse decodes raw JSON into a document. Any syntax problem is reduced
// to a single error; no partial data escapes.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to read file: %v", err)
	}
	return &doc, nil
}

// Validate checks the document structure and every record, accumulating
// all problems so the user can fix the source file in one pass. A missing
// version field is treated as a hard error, matching the reference
// behavior where it lands in the same list that decides validity.
func Validate(doc *Document) ValidationResult {
	var errs []string

	if doc == nil {
		return ValidationResult{Errors: []string{"file is empty or contains invalid JSON"}}
	}

	if !truthy(doc.Version) {
		errs = append(errs, "missing data format version")
	}

	records, err := doc.records()
	if err != nil {
		errs = append(errs, "missing or invalid technologies array")
		return ValidationResult{Errors: errs}
	}

	for i, rec := range records {
		if !truthy(rec.ID) {
			errs = append(errs, fmt.Sprintf("technology #%d: missing id", i+1))
		}
		if strings.TrimSpace(rec.Title) == "" {
			errs = append(errs, fmt.Sprintf("technology #%d: missing title", i+1))
		}
		if strings.TrimSpace(rec.Description) == "" {
			errs = append(errs, fmt.Sprintf("technology #%d: missing description", i+1))
		}
		if rec.Title != "" && len([]rune(rec.Title)) > models.MaxTitleLength {
			errs = append(errs, fmt.Sprintf("technology %q: title too long (max %d characters)", rec.Title, models.MaxTitleLength))
		}
		if rec.Deadline != "" {
			if _, err := models.ParseDeadline(rec.Deadline); err != nil {
				errs = append(errs, fmt.Sprintf("technology %q: invalid deadline date format", rec.Title))
			}
		}
		if rec.Progress != nil {
			if p, ok := parseProgress(rec.Progress); !ok || p < 0 || p > 100 {
				errs = append(errs, fmt.Sprintf("technology %q: progress must be between 0 and 100", rec.Title))
			}
		}
	}

	if len(errs) > 0 {
		return ValidationResult{Errors: errs}
	}
	return ValidationResult{IsValid: true, Errors: nil, Data: doc}
}

// Apply validates the document and merges its records into the store in
// one persisted batch. Missing fields get defaults, unknown statuses are
// coerced to not-started, and every record is re-keyed with a fresh id
// while the inbound id is kept as provenance.
func Apply(doc *Document, st *store.Store, now time.Time) (*Summary, error) {
	result := Validate(doc)
	if !result.IsValid {
		return nil, fmt.Errorf("document failed validation with %d errors", len(result.Errors))
	}

	records, err := doc.records()
	if err != nil {
		return nil, fmt.Errorf("missing or invalid technologies array")
	}

	items := make([]models.Technology, 0, len(records))
	for _, rec := range records {
		items = append(items, normalize(rec, now))
	}

	added := st.ImportBatch(items)

	summary := &Summary{Imported: len(added)}
	for _, t := range added {
		if t.HasDeadline() {
			summary.WithDeadlines++
		}
		if t.Notes != "" {
			summary.WithNotes++
		}
		if t.Status == models.StatusCompleted {
			summary.Completed++
		}
	}
	return summary, nil
}

// normalize fills defaults and coerces loose inbound fields into a
// well-formed technology. The fresh id is assigned by the store.
func normalize(rec Record, now time.Time) models.Technology {
	t := models.Technology{
		Title:       rec.Title,
		Description: rec.Description,
		Category:    rec.Category,
		Difficulty:  rec.Difficulty,
		Notes:       rec.Notes,
		Deadline:    rec.Deadline,
		Resources:   rec.Resources,
		OriginalID:  fmt.Sprint(rec.ID),
		IsExternal:  true,
	}

	if t.Resources == nil {
		t.Resources = []string{}
	}
	if t.Category == "" {
		t.Category = "other"
	}
	if t.Difficulty == "" {
		t.Difficulty = "beginner"
	}

	t.Status = models.Status(rec.Status)
	if !models.ValidStatus(t.Status) {
		t.Status = models.StatusNotStarted
	}
	if p, ok := parseProgress(rec.Progress); ok {
		t.Progress = p
	}

	t.CreatedAt = parseTimeOr(rec.CreatedAt, now)
	t.UpdatedAt = parseTimeOr(rec.UpdatedAt, now)
	return t
}

func (d *Document) records() ([]Record, error) {
	if len(d.Technologies) == 0 || string(d.Technologies) == "null" {
		return nil, fmt.Errorf("technologies array is missing")
	}
	var records []Record
	if err := json.Unmarshal(d.Technologies, &records); err != nil {
		return nil, fmt.Errorf("technologies is not a valid array: %v", err)
	}
	return records, nil
}

// truthy mirrors the loose presence check of the reference: nil, empty
// strings, zero numbers and false all count as missing.
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case float64:
		return val != 0
	case bool:
		return val
	default:
		return true
	}
}

// parseProgress coerces a JSON number or numeric string to an integer
func parseProgress(v interface{}) (int, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		return int(val), true
	case string:
		p, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return p, true
	default:
		return 0, false
	}
}

func parseTimeOr(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts
	}
	return fallback
}
