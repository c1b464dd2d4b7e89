package storage

import (
	"context"
	"errors"
)

// ErrWatchUnsupported is returned by Watch when the adapter cannot deliver
// change notifications.
var ErrWatchUnsupported = errors.New("storage: watch unsupported")

// Op identifies the kind of change carried by an Event.
type Op uint8

const (
	// OpSet indicates a key was written.
	OpSet Op = iota
	// OpDelete indicates a key was removed.
	OpDelete
)

// Event describes a single observed change to the underlying store. Key is
// reported without the adapter's namespace prefix. A zero Key means the
// adapter could only detect that something changed, not what.
type Event struct {
	Key string
	Op  Op
}

// Adapter is the key-value contract the session store persists through.
// Keys passed in are unprefixed; adapters apply their own namespace prefix
// before touching the backing store.
//
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes key to value, creating or overwriting it.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists all stored keys within the adapter's namespace,
	// unprefixed. Order is unspecified.
	Keys(ctx context.Context) ([]string, error)
	// Close releases any resources held by the adapter.
	Close() error
}

// Watcher is implemented by adapters that can report external changes.
// The returned channel is closed when ctx is done. Delivery is best-effort:
// events may be dropped under load and may arrive more than once.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// DefaultKeyPrefix namespaces all keys written by this module so a shared
// store (redis, a dotfile directory) does not collide with other tenants.
const DefaultKeyPrefix = "mall:"
