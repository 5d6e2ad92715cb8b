package export

import (
	"time"

	"github.com/example/techtracker/pkg/models"
)

// Version is the export document format version
const Version = "2.0"

// Options controls which optional fields the export document carries
type Options struct {
	IncludeNotes     bool `json:"includeNotes"`
	IncludeProgress  bool `json:"includeProgress"`
	IncludeDeadlines bool `json:"includeDeadlines"`
	IncludeStatus    bool `json:"includeStatus"`
	Compress         bool `json:"compress"`
}

// DefaultOptions returns the full export configuration
func DefaultOptions() Options {
	return Options{
		IncludeNotes:     true,
		IncludeProgress:  true,
		IncludeDeadlines: true,
		IncludeStatus:    true,
	}
}

// Stats summarizes the exported collection inside the document metadata
type Stats struct {
	TotalTechnologies int `json:"totalTechnologies"`
	Completed         int `json:"completed"`
	InProgress        int `json:"inProgress"`
	WithDeadlines     int `json:"withDeadlines"`
	WithNotes         int `json:"withNotes"`
}

// Metadata describes the producing application
type Metadata struct {
	Application string `json:"application"`
	Author      string `json:"author"`
	Stats       Stats  `json:"stats"`
}

// Record is one technology inside an export document. Optional fields are
// present only when the matching Options flag is set.
type Record struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Difficulty  string        `json:"difficulty"`
	CreatedAt   time.Time     `json:"createdAt"`
	Resources   []string      `json:"resources"`
	Status      models.Status `json:"status,omitempty"`
	Progress    *int          `json:"progress,omitempty"`
	Deadline    string        `json:"deadline,omitempty"`
	DaysLeft    *int          `json:"daysLeft,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	LastUpdated *time.Time    `json:"lastUpdated,omitempty"`
}

// Document is the portable export format
type Document struct {
	Version       string    `json:"version"`
	ExportedAt    time.Time `json:"exportedAt"`
	Metadata      *Metadata `json:"metadata,omitempty"`
	Technologies  []Record  `json:"technologies"`
	ExportOptions *Options  `json:"exportOptions,omitempty"`
}
