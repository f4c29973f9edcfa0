// Package driven defines secondary port interfaces for external adapters.
package driven

import "context"

// StateStore defines the driven port for the local key-value store that holds
// the ledger and the run marker.
type StateStore interface {
	// Get returns the value stored under key. found is false when the key has
	// never been set.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores or replaces the value under key.
	Set(ctx context.Context, key, value string) error
}

// StateUpdater is implemented by stores that can read-modify-write one key
// atomically. fn receives the current value and returns the value to store;
// it may be called more than once if the key changes concurrently.
type StateUpdater interface {
	Update(ctx context.Context, key string, fn func(value string, found bool) (string, error)) error
}
