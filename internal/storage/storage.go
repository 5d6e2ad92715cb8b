package storage

// Listener is notified after a key has been written or deleted. The new
// value is empty on deletion. Notifications are delivered asynchronously,
// so observers see an eventual, last-writer-wins view.
type Listener func(key, value string)

// Storage is a durable key-value store for serialized documents. It is the
// single shared resource of the application; only the collection store
// writes the collection key.
type Storage interface {
	// Get returns the value for key. The second return value is false
	// when the key is absent.
	Get(key string) (string, bool, error)
	// Set writes the value for key and notifies subscribers.
	Set(key, value string) error
	// Delete removes the key and notifies subscribers.
	Delete(key string) error
	// Subscribe registers a listener for subsequent changes.
	Subscribe(l Listener)
	// Close releases underlying resources.
	Close() error
}
