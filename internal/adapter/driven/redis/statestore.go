// Package redis implements the StateStore port on a Redis server. Ledger
// appends go through Update, so instances sharing a server never drop each
// other's IDs; the run marker is still last writer wins.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ericfisherdev/artistban/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.StateStore   = (*StateStore)(nil)
	_ driven.StateUpdater = (*StateStore)(nil)
)

// StateStore keeps engine state as plain string keys under a common prefix.
type StateStore struct {
	client *goredis.Client
	prefix string
}

// NewStateStore creates a StateStore from a redis:// URL.
func NewStateStore(redisURL, prefix string) (*StateStore, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewStateStoreWithClient(goredis.NewClient(opts), prefix), nil
}

// NewStateStoreWithClient wraps an existing client.
func NewStateStoreWithClient(client *goredis.Client, prefix string) *StateStore {
	return &StateStore{client: client, prefix: prefix}
}

// Ping verifies the server is reachable.
func (s *StateStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Get retrieves the value stored under key. Returns ("", false, nil) if the key
// does not exist.
func (s *StateStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get state %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores or replaces the value under key with no expiry.
func (s *StateStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

// maxUpdateAttempts bounds optimistic retries when another client changes the
// key between WATCH and EXEC.
const maxUpdateAttempts = 64

// Update applies fn to the value under key inside a WATCH/MULTI transaction,
// retrying when the key changes concurrently.
func (s *StateStore) Update(ctx context.Context, key string, fn func(value string, found bool) (string, error)) error {
	k := s.prefix + key
	txf := func(tx *goredis.Tx) error {
		value, err := tx.Get(ctx, k).Result()
		found := true
		if errors.Is(err, goredis.Nil) {
			value, found = "", false
		} else if err != nil {
			return err
		}

		next, err := fn(value, found)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for range maxUpdateAttempts {
		err := s.client.Watch(ctx, txf, k)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("update state %q: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("update state %q: gave up after %d conflicting attempts", key, maxUpdateAttempts)
}

// Close releases the underlying connection pool.
func (s *StateStore) Close() error {
	return s.client.Close()
}
