package bot

import (
	"time"
)

// Config holds the tunables of the bot surface
type Config struct {
	// Maximum items rendered by /list before the output is cut
	ListLimit int
	// Maximum upcoming deadlines shown by /deadlines
	DeadlineLimit int
	// Maximum validation errors echoed back on a failed import
	ImportErrorLimit int
	// Delay before an edited note is committed to the store
	NotesAutosaveDelay time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *Config {
	return &Config{
		ListLimit:          25,
		DeadlineLimit:      5,
		ImportErrorLimit:   10,
		NotesAutosaveDelay: 500 * time.Millisecond,
	}
}
