// Package export serializes the collection to portable JSON, CSV and XLSX
// documents.
package export

import (
	"encoding/json"
	"fmt"

	"time"

	"github.com/example/techtracker/internal/stats"
	"github.com/example/techtracker/pkg/models"
)

// BuildDocument assembles the export document for the given collection.
// Field inclusion follows opts; required fields are always present.
func BuildDocument(items []models.Technology, now time.Time, opts Options) Document {
	doc := Document{
		Version:    Version,
		ExportedAt: now,
		Metadata: &Metadata{
			Application: "Technology Tracker",
			Author:      "User",
			Stats:       collectStats(items),
		},
		Technologies:  make([]Record, 0, len(items)),
		ExportOptions: &opts,
	}

	for _, t := range items {
		rec := Record{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Category:    t.Category,
			Difficulty:  t.Difficulty,
			CreatedAt:   t.CreatedAt,
			Resources:   t.Resources,
		}
		if rec.Resources == nil {
			rec.Resources = []string{}
		}

		if opts.IncludeStatus {
			rec.Status = t.Status
			if opts.IncludeProgress {
				progress := t.Progress
				rec.Progress = &progress
			}
		}
		if opts.IncludeDeadlines && t.HasDeadline() {
			rec.Deadline = t.Deadline
			if due, err := t.DeadlineTime(); err == nil {
				daysLeft := stats.DaysLeft(due, now)
				rec.DaysLeft = &daysLeft
			}
		}
		if opts.IncludeNotes && t.Notes != "" {
			rec.Notes = t.Notes
			lastUpdated := t.UpdatedAt
			rec.LastUpdated = &lastUpdated
		}

		doc.Technologies = append(doc.Technologies, rec)
	}
	return doc
}

func collectStats(items []models.Technology) Stats {
	s := Stats{TotalTechnologies: len(items)}
	for _, t := range items {
		if t.Status == models.StatusCompleted {
			s.Completed++
		}
		if t.Status == models.StatusInProgress {
			s.InProgress++
		}
		if t.HasDeadline() {
			s.WithDeadlines++
		}
		if t.HasNotes() {
			s.WithNotes++
		}
	}
	return s
}

// MarshalJSON renders the document either compact or pretty-printed with
// two-space indentation, per the Compress option.
func MarshalJSON(doc Document) ([]byte, error) {
	var data []byte
	var err error
	if doc.ExportOptions != nil && doc.ExportOptions.Compress {
		data, err = json.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to serialize export document: %v", err)
	}
	return data, nil
}

// Filename builds the download name: tech-tracker-<YYYY-MM-DD>[-min].<ext>.
// Only JSON output has a compact variant, so only JSON names carry the
// -min suffix.
func Filename(format string, now time.Time, compress bool) string {
	suffix := ""
	if compress && format == "json" {
		suffix = "-min"
	}
	return fmt.Sprintf("tech-tracker-%s%s.%s", now.Format("2006-01-02"), suffix, format)
}
