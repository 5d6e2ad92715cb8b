package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// SQLStorage persists key-value pairs in a single table. It works on
// SQLite for local use and on PostgreSQL when DATABASE_URL points at one.
type SQLStorage struct {
	db *sqlx.DB

	mu        sync.Mutex
	listeners []Listener
}

// Open connects to the database selected by dsn. An empty dsn opens the
// default SQLite file under the data directory.
func Open(dsn string) (*SQLStorage, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return openPostgres(dsn)
	}
	return openSQLite(dsn)
}

func openSQLite(path string) (*SQLStorage, error) {
	if path == "" {
		dataDir := "data"
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %v", err)
		}
		path = filepath.Join(dataDir, "techtracker.db")
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLStorage{db: db}
	if err := s.initializeSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func openPostgres(dsn string) (*SQLStorage, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	s := &SQLStorage{db: db}
	if err := s.initializeSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// initializeSchema creates the key-value table if it doesn't exist
func (s *SQLStorage) initializeSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_store (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create kv_store table: %v", err)
	}
	return nil
}

// rebind converts ? placeholders to $n for PostgreSQL if needed
func (s *SQLStorage) rebind(query string) string {
	if s.db.DriverName() == "postgres" {
		return sqlx.Rebind(sqlx.DOLLAR, query)
	}
	return query
}

// Get returns the stored value for key
func (s *SQLStorage) Get(key string) (string, bool, error) {
	var value string
	err := s.db.Get(&value, s.rebind("SELECT value FROM kv_store WHERE name = ?"), key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %v", key, err)
	}
	return value, true, nil
}

// Set writes the value for key, replacing any previous value
func (s *SQLStorage) Set(key, value string) error {
	var query string
	if s.db.DriverName() == "postgres" {
		query = `
			INSERT INTO kv_store (name, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (name) DO UPDATE SET value = $2, updated_at = NOW()
		`
	} else {
		query = `
			INSERT INTO kv_store (name, value, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
		`
	}

	_, err := s.db.Exec(query, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %v", key, err)
	}

	s.notify(key, value)
	return nil
}

// Delete removes the key
func (s *SQLStorage) Delete(key string) error {
	_, err := s.db.Exec(s.rebind("DELETE FROM kv_store WHERE name = ?"), key)
	if err != nil {
		return fmt.Errorf("failed to delete key %q: %v", key, err)
	}

	s.notify(key, "")
	return nil
}

// Subscribe registers a listener for key changes
func (s *SQLStorage) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *SQLStorage) notify(key, value string) {
	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	// Asynchronous delivery: a writer holding its own lock must not be
	// re-entered by its change handler.
	go func() {
		for _, l := range listeners {
			l(key, value)
		}
	}()
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
