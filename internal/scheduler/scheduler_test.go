package scheduler

import (
	"testing"
	"time"

	"github.com/example/techtracker/internal/storage"
	"github.com/example/techtracker/internal/store"
	"github.com/example/techtracker/pkg/models"
)

type captureNotifier struct {
	calls   int
	entries []models.DeadlineEntry
}

func (c *captureNotifier) SendDeadlineReminders(entries []models.DeadlineEntry) error {
	c.calls++
	c.entries = entries
	return nil
}

func newSchedulerStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(storage.NewMemStorage())
	s.Load()
	return s
}

func TestRunManualCheckNoDeadlines(t *testing.T) {
	st := newSchedulerStore(t)
	n := &captureNotifier{}

	if err := New(st, n).RunManualCheck(); err != nil {
		t.Fatal(err)
	}
	if n.calls != 0 {
		t.Error("notifier called when nothing is due")
	}
}

func TestRunManualCheckHonorsHorizon(t *testing.T) {
	st := newSchedulerStore(t)
	n := &captureNotifier{}

	inside := time.Now().AddDate(0, 0, 3).Format(models.DeadlineLayout)
	outside := time.Now().AddDate(0, 0, 30).Format(models.DeadlineLayout)
	if err := st.UpdateDeadline(1, inside); err != nil {
		t.Fatal(err)
	}
	if err := st.UpdateDeadline(2, outside); err != nil {
		t.Fatal(err)
	}

	sched := New(st, n)
	if err := sched.RunManualCheck(); err != nil {
		t.Fatal(err)
	}
	if n.calls != 1 {
		t.Fatalf("notifier called %d times, want 1", n.calls)
	}
	if len(n.entries) != 1 {
		t.Fatalf("got %d entries, want 1 (deadline beyond the horizon excluded)", len(n.entries))
	}
	if n.entries[0].Technology.ID != 1 {
		t.Errorf("wrong technology reminded: id %d", n.entries[0].Technology.ID)
	}
}

func TestRunManualCheckSkipsCompleted(t *testing.T) {
	st := newSchedulerStore(t)
	n := &captureNotifier{}

	due := time.Now().AddDate(0, 0, 2).Format(models.DeadlineLayout)
	if err := st.UpdateDeadline(1, due); err != nil {
		t.Fatal(err)
	}
	if err := st.UpdateStatus(1, models.StatusCompleted); err != nil {
		t.Fatal(err)
	}

	if err := New(st, n).RunManualCheck(); err != nil {
		t.Fatal(err)
	}
	if n.calls != 0 {
		t.Error("completed technology still triggered a reminder")
	}
}
