// Package debounce implements a cancellable one-shot timer: scheduling a
// new action discards the pending one, so only the last action within the
// interval executes (last write wins).
package debounce

import (
	"sync"
	"time"
)

// DefaultInterval matches the autosave delay used for notes edits
const DefaultInterval = 500 * time.Millisecond

// Debouncer coalesces rapid calls into a single delayed execution
type Debouncer struct {
	interval time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a debouncer with the given interval; a non-positive
// interval falls back to the default.
func New(interval time.Duration) *Debouncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Debouncer{interval: interval}
}

// Schedule arranges fn to run after the interval, cancelling any pending
// action scheduled earlier.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, fn)
}

// Flush cancels the pending action, if any, and runs fn immediately
func (d *Debouncer) Flush(fn func()) {
	d.Stop()
	fn()
}

// Stop cancels the pending action without running it
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
