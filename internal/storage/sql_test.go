package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *SQLStorage {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := openTestDB(t)

	_, ok, err := s.Get("nothing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("missing key reported as present")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	s := openTestDB(t)

	if err := s.Set("greeting", "hello"); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Get("greeting")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if got != "hello" {
		t.Errorf("value = %q, want %q", got, "hello")
	}
}

func TestSetOverwrites(t *testing.T) {
	s := openTestDB(t)

	if err := s.Set("key", "first"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("key", "second"); err != nil {
		t.Fatal(err)
	}
	got, _, err := s.Get("key")
	if err != nil {
		t.Fatal(err)
	}
	if got != "second" {
		t.Errorf("value = %q, want %q (upsert must replace)", got, "second")
	}
}

func TestDelete(t *testing.T) {
	s := openTestDB(t)

	if err := s.Set("key", "value"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("key"); err != nil {
		t.Fatal(err)
	}
	_, ok, err := s.Get("key")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("deleted key still present")
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	s := openTestDB(t)

	type change struct{ key, value string }
	changes := make(chan change, 4)
	s.Subscribe(func(key, value string) {
		changes <- change{key, value}
	})

	if err := s.Set("watched", "v1"); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-changes:
		if c.key != "watched" || c.value != "v1" {
			t.Errorf("got change %+v, want watched/v1", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener never notified")
	}

	if err := s.Delete("watched"); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-changes:
		if c.value != "" {
			t.Errorf("delete notification value = %q, want empty", c.value)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener never notified of delete")
	}
}
