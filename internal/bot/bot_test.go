package bot

import (
	"testing"
	"time"

	"github.com/example/techtracker/internal/debounce"
	"github.com/example/techtracker/internal/search"
	"github.com/example/techtracker/internal/storage"
	"github.com/example/techtracker/internal/store"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func newTestBot(t *testing.T) *Bot {
	t.Helper()
	st := store.New(storage.NewMemStorage())
	st.Load()

	cfg := DefaultConfig()
	cfg.NotesAutosaveDelay = 20 * time.Millisecond

	return &Bot{
		store:              st,
		searcher:           &search.MockClient{},
		config:             cfg,
		awaitingFileUpload: make(map[int64]bool),
		lastSearchResults:  make(map[int64][]search.Result),
		noteDebouncers:     make(map[noteKey]*debounce.Debouncer),
		pendingNotes:       make(map[noteKey]string),
	}
}

func waitForNotes(t *testing.T, st *store.Store, id int64, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if tech, ok := st.Get(id); ok && tech.Notes == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	tech, _ := st.Get(id)
	t.Fatalf("notes for technology %d = %q, want %q", id, tech.Notes, want)
}

func TestScheduleNoteCommitsEachTechnology(t *testing.T) {
	b := newTestBot(t)

	// Two different records edited inside one autosave window: both
	// notes must survive.
	b.scheduleNote(1, 1, "note for tech one")
	b.scheduleNote(1, 2, "note for tech two")

	waitForNotes(t, b.store, 1, "note for tech one")
	waitForNotes(t, b.store, 2, "note for tech two")
}

func TestScheduleNoteCoalescesSameTechnology(t *testing.T) {
	b := newTestBot(t)

	b.scheduleNote(1, 1, "first draft")
	b.scheduleNote(1, 1, "final text")

	waitForNotes(t, b.store, 1, "final text")

	// Only the last edit of the record may land
	time.Sleep(50 * time.Millisecond)
	tech, _ := b.store.Get(1)
	if tech.Notes != "final text" {
		t.Errorf("notes = %q after coalesced edits, want %q", tech.Notes, "final text")
	}
}

func TestStopFlushesPendingNotes(t *testing.T) {
	b := newTestBot(t)
	b.config.NotesAutosaveDelay = time.Hour

	b.scheduleNote(1, 1, "unsaved draft")
	b.scheduleNote(1, 2, "another draft")
	b.flushNotes()

	waitForNotes(t, b.store, 1, "unsaved draft")
	waitForNotes(t, b.store, 2, "another draft")
}

func TestIsJSONDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  tgbotapi.Document
		want bool
	}{
		{"json mime type", tgbotapi.Document{MimeType: "application/json"}, true},
		{"json extension", tgbotapi.Document{FileName: "tech-tracker-2026-03-01.json"}, true},
		{"csv rejected", tgbotapi.Document{FileName: "export.csv", MimeType: "text/csv"}, false},
		{"bare name rejected", tgbotapi.Document{FileName: "data"}, false},
		{"extension only", tgbotapi.Document{FileName: ".json"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isJSONDocument(&tt.doc); got != tt.want {
				t.Errorf("isJSONDocument(%q/%q) = %v, want %v", tt.doc.FileName, tt.doc.MimeType, got, tt.want)
			}
		})
	}
}

func TestFormatDaysLeft(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "due today"},
		{1, "due tomorrow"},
		{5, "due in 5 days"},
	}
	for _, tt := range tests {
		if got := formatDaysLeft(tt.days); got != tt.want {
			t.Errorf("formatDaysLeft(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}
