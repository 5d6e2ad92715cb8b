package storage

import "sync"

// MemStorage is an in-memory Storage used in tests and as a fallback when
// no database is reachable.
type MemStorage struct {
	mu        sync.Mutex
	values    map[string]string
	listeners []Listener

	// SetErr, when non-nil, is returned by Set to simulate quota or
	// serialization failures.
	SetErr error
}

// NewMemStorage creates an empty in-memory store
func NewMemStorage() *MemStorage {
	return &MemStorage{values: make(map[string]string)}
}

// Get returns the stored value for key
func (m *MemStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set writes the value for key
func (m *MemStorage) Set(key, value string) error {
	m.mu.Lock()
	if m.SetErr != nil {
		err := m.SetErr
		m.mu.Unlock()
		return err
	}
	m.values[key] = value
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	go func() {
		for _, l := range listeners {
			l(key, value)
		}
	}()
	return nil
}

// Delete removes the key
func (m *MemStorage) Delete(key string) error {
	m.mu.Lock()
	delete(m.values, key)
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	go func() {
		for _, l := range listeners {
			l(key, "")
		}
	}()
	return nil
}

// Subscribe registers a listener for key changes
func (m *MemStorage) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Close is a no-op for the in-memory store
func (m *MemStorage) Close() error {
	return nil
}
