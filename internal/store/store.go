package store

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/example/techtracker/internal/storage"
	"github.com/example/techtracker/pkg/models"
)

// StorageKey is the key the serialized collection lives under
const StorageKey = "tech-tracker-technologies"

// Strategy selects how a bulk status update is applied
type Strategy string

const (
	// StrategyReplace sets the new status unconditionally
	StrategyReplace Strategy = "replace"
	// StrategyProgress advances one step along the learning chain
	StrategyProgress Strategy = "progress"
	// StrategyReset forces every selected item back to not-started
	StrategyReset Strategy = "reset"
)

// Store owns the in-memory collection of technologies and keeps it in sync
// with durable storage. Every mutator updates memory first, then persists
// the whole collection; a failed write is logged and memory stays
// authoritative for the session.
type Store struct {
	storage storage.Storage
	key     string

	mu    sync.Mutex
	items []models.Technology

	// values of our own recent writes, so change notifications can tell
	// a self echo from another writer
	pendingEcho map[string]int

	now func() time.Time
	rnd *rand.Rand
}

// New creates a store over the given storage backend and subscribes to
// change notifications so concurrent writers (other tabs, in browser
// terms) are reconciled last-writer-wins.
func New(st storage.Storage) *Store {
	s := &Store{
		storage:     st,
		key:         StorageKey,
		pendingEcho: make(map[string]int),
		now:         time.Now,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	st.Subscribe(s.onStorageChange)
	return s
}

// Load reads the persisted collection. Missing or corrupt data falls back
// to the seed set; Load never fails to the caller.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.storage.Get(s.key)
	if err != nil {
		log.Printf("Error reading %q from storage: %v", s.key, err)
		s.items = Seed(s.now())
		s.persistLocked()
		return
	}
	if !ok {
		s.items = Seed(s.now())
		s.persistLocked()
		return
	}

	var items []models.Technology
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("Error parsing stored collection, falling back to seed data: %v", err)
		s.items = Seed(s.now())
		s.persistLocked()
		return
	}
	s.items = items
}

// Items returns a copy of the current collection in insertion order
func (s *Store) Items() []models.Technology {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Technology, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the technology with the given id
func (s *Store) Get(id int64) (models.Technology, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.ID == id {
			return t, true
		}
	}
	return models.Technology{}, false
}

// Add creates a new technology with a deterministic id (max existing + 1),
// stamps timestamps, appends it and persists.
func (s *Store) Add(tech models.Technology) (models.Technology, error) {
	if strings.TrimSpace(tech.Title) == "" {
		return models.Technology{}, fmt.Errorf("title is required")
	}
	if strings.TrimSpace(tech.Description) == "" {
		return models.Technology{}, fmt.Errorf("description is required")
	}
	if tech.Status == "" {
		tech.Status = models.StatusNotStarted
	}
	if !models.ValidStatus(tech.Status) {
		return models.Technology{}, fmt.Errorf("unknown status: %q", tech.Status)
	}
	if tech.Progress < 0 || tech.Progress > 100 {
		return models.Technology{}, fmt.Errorf("progress must be between 0 and 100")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	tech.ID = s.nextIDLocked()
	tech.CreatedAt = now
	tech.UpdatedAt = now
	if tech.Status == models.StatusCompleted {
		tech.Progress = 100
	}

	s.items = append(s.items, tech)
	s.persistLocked()
	return tech, nil
}

// AddExternal creates a technology from a search result, keeping the
// external provenance fields.
func (s *Store) AddExternal(title, description, category, difficulty, url, language string, stars int, topics []string) (models.Technology, error) {
	if description == "" {
		description = "Technology added from GitHub search"
	}
	if category == "" {
		category = "Other"
	}
	if difficulty == "" {
		difficulty = "beginner"
	}
	return s.Add(models.Technology{
		Title:       title,
		Description: description,
		Category:    category,
		Difficulty:  difficulty,
		Status:      models.StatusNotStarted,
		IsExternal:  true,
		ExternalURL: url,
		Stars:       stars,
		Language:    language,
		Topics:      topics,
	})
}

// UpdateStatus sets a new status on the record and refreshes UpdatedAt.
// Completing an item forces its progress to 100. An unknown id is a
// silent no-op.
func (s *Store) UpdateStatus(id int64, status models.Status) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("unknown status: %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		s.applyStatusLocked(&s.items[i], status)
		s.persistLocked()
		return nil
	}
	return nil
}

// UpdateNotes replaces the notes text and refreshes UpdatedAt
func (s *Store) UpdateNotes(id int64, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		s.items[i].Notes = notes
		s.items[i].UpdatedAt = s.now()
		s.persistLocked()
		return nil
	}
	return nil
}

// UpdateDeadline sets or clears the deadline and refreshes UpdatedAt
func (s *Store) UpdateDeadline(id int64, deadline string) error {
	if deadline != "" {
		if _, err := models.ParseDeadline(deadline); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		s.items[i].Deadline = deadline
		s.items[i].UpdatedAt = s.now()
		s.persistLocked()
		return nil
	}
	return nil
}

// UpdateProgress sets the completion percentage and refreshes UpdatedAt
func (s *Store) UpdateProgress(id int64, progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		s.items[i].Progress = progress
		s.items[i].UpdatedAt = s.now()
		s.persistLocked()
		return nil
	}
	return nil
}

// bulkNextStatus defines the single step a bulk "progress" update can
// take. Only an in-progress item has a next step here: starting an item
// is an explicit choice, not something a bulk advance does implicitly.
var bulkNextStatus = map[models.Status]models.Status{
	models.StatusInProgress: models.StatusCompleted,
}

// BulkUpdateStatus applies a status change to every listed id using the
// given strategy. Unknown ids are skipped, not fatal to the batch. The
// number of records actually changed is returned.
func (s *Store) BulkUpdateStatus(ids []int64, status models.Status, strategy Strategy) (int, error) {
	if strategy == StrategyReplace && !models.ValidStatus(status) {
		return 0, fmt.Errorf("unknown status: %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	updated := 0
	for i := range s.items {
		if !wanted[s.items[i].ID] {
			continue
		}
		switch strategy {
		case StrategyProgress:
			next, ok := bulkNextStatus[s.items[i].Status]
			if !ok {
				continue
			}
			s.applyStatusLocked(&s.items[i], next)
		case StrategyReset:
			s.applyStatusLocked(&s.items[i], models.StatusNotStarted)
		case StrategyReplace:
			s.applyStatusLocked(&s.items[i], status)
		default:
			return updated, fmt.Errorf("unknown strategy: %q", strategy)
		}
		updated++
	}

	if updated > 0 {
		s.persistLocked()
	}
	return updated, nil
}

// MarkAllCompleted sets every technology to completed
func (s *Store) MarkAllCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.applyStatusLocked(&s.items[i], models.StatusCompleted)
	}
	s.persistLocked()
}

// ResetAllStatuses sets every technology back to not-started
func (s *Store) ResetAllStatuses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.applyStatusLocked(&s.items[i], models.StatusNotStarted)
	}
	s.persistLocked()
}

// Remove deletes one technology. An unknown id is a silent no-op.
func (s *Store) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// Clear deletes the whole collection
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persistLocked()
}

// ImportBatch appends normalized imported records in one persisted write.
// Each record gets a fresh random id checked against the live collection;
// its inbound id is expected to already be preserved in OriginalID.
func (s *Store) ImportBatch(items []models.Technology) []models.Technology {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[int64]bool, len(s.items))
	for _, t := range s.items {
		existing[t.ID] = true
	}

	added := make([]models.Technology, 0, len(items))
	for _, t := range items {
		t.ID = s.randomIDLocked(existing)
		existing[t.ID] = true
		if t.Status == models.StatusCompleted {
			t.Progress = 100
		}
		s.items = append(s.items, t)
		added = append(added, t)
	}

	s.persistLocked()
	return added
}

// Filter returns technologies matching a case-insensitive substring query
// over title, description and category, optionally narrowed by status and
// category. Empty arguments match everything.
func (s *Store) Filter(query string, status models.Status, category string) []models.Technology {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.Technology
	for _, t := range s.items {
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) &&
			!strings.Contains(strings.ToLower(t.Category), q) {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		if category != "" && !strings.EqualFold(t.Category, category) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Categories returns the distinct categories present, in first-seen order
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, t := range s.items {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}

func (s *Store) applyStatusLocked(t *models.Technology, status models.Status) {
	t.Status = status
	if status == models.StatusCompleted {
		t.Progress = 100
	}
	t.UpdatedAt = s.now()
}

// nextIDLocked returns max(existing ids) + 1, or 1 for an empty collection
func (s *Store) nextIDLocked() int64 {
	var max int64
	for _, t := range s.items {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

// randomIDLocked mints a random id that does not collide with existing.
// Import uses random ids instead of the deterministic scheme so records
// from different exports cannot clash with each other mid-batch.
func (s *Store) randomIDLocked(existing map[int64]bool) int64 {
	for {
		id := s.now().UnixMilli() + s.rnd.Int63n(1_000_000)
		if !existing[id] {
			return id
		}
	}
}

// persistLocked writes the whole collection back to storage. Failures are
// logged and do not roll back the in-memory mutation; memory stays
// authoritative for the rest of the session.
func (s *Store) persistLocked() {
	data, err := json.Marshal(s.items)
	if err != nil {
		log.Printf("Error serializing collection: %v", err)
		return
	}

	// The echo marker is recorded before Set because notification delivery
	// may start before Set returns; a failed write leaves no notification
	// behind, so the marker must be rolled back or it would swallow a
	// later foreign write carrying the same value.
	value := string(data)
	s.pendingEcho[value]++
	if err := s.storage.Set(s.key, value); err != nil {
		if n := s.pendingEcho[value]; n <= 1 {
			delete(s.pendingEcho, value)
		} else {
			s.pendingEcho[value] = n - 1
		}
		log.Printf("Error saving collection to storage: %v", err)
	}
}

// onStorageChange re-hydrates the in-memory copy when another writer
// touches our key. Echoes of our own writes are skipped.
func (s *Store) onStorageChange(key, value string) {
	if key != s.key {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := s.pendingEcho[value]; n > 0 {
		if n == 1 {
			delete(s.pendingEcho, value)
		} else {
			s.pendingEcho[value] = n - 1
		}
		return
	}

	if value == "" {
		s.items = nil
		return
	}

	var items []models.Technology
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		log.Printf("Error parsing storage change for %q: %v", key, err)
		return
	}
	s.items = items
}
