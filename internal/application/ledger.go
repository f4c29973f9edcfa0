package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ericfisherdev/artistban/internal/domain/port/driven"
	"github.com/ericfisherdev/artistban/internal/metrics"
)

// State keys and the run marker's date layout.
const (
	LedgerKey    = "blockedArtists"
	RunMarkerKey = "lastRun"
	DateLayout   = "2006-01-02"
)

// Ledger is the persisted set of artist IDs that have been blocked, plus the
// date of the last completed automatic pass. It only ever grows.
type Ledger struct {
	store driven.StateStore
}

// NewLedger creates a Ledger on top of the given state store.
func NewLedger(store driven.StateStore) *Ledger {
	return &Ledger{store: store}
}

// IDs returns the processed identifiers in the order they were added.
func (l *Ledger) IDs(ctx context.Context) ([]string, error) {
	raw, found, err := l.store.Get(ctx, LedgerKey)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return decodeIDs(raw, found)
}

func decodeIDs(raw string, found bool) ([]string, error) {
	if !found || raw == "" {
		return []string{}, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Snapshot returns the processed identifiers as a set for O(1) lookup.
func (l *Ledger) Snapshot(ctx context.Context) (map[string]struct{}, error) {
	ids, err := l.IDs(ctx)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	metrics.LedgerSize.Set(float64(len(set)))
	return set, nil
}

// Contains reports whether id has already been processed.
func (l *Ledger) Contains(ctx context.Context, id string) (bool, error) {
	set, err := l.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	_, ok := set[id]
	return ok, nil
}

// Size returns the number of processed identifiers.
func (l *Ledger) Size(ctx context.Context) (int, error) {
	set, err := l.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return len(set), nil
}

// Add records id as processed. Idempotent. On stores that implement
// driven.StateUpdater the append is atomic, so instances sharing a store do not
// drop each other's IDs.
func (l *Ledger) Add(ctx context.Context, id string) error {
	if u, ok := l.store.(driven.StateUpdater); ok {
		var size int
		err := u.Update(ctx, LedgerKey, func(raw string, found bool) (string, error) {
			ids, err := decodeIDs(raw, found)
			if err != nil {
				return "", err
			}
			next, err := appendID(ids, id)
			if err != nil {
				return "", err
			}
			if next == "" {
				size = len(ids)
				return raw, nil
			}
			size = len(ids) + 1
			return next, nil
		})
		if err != nil {
			return fmt.Errorf("save ledger: %w", err)
		}
		metrics.LedgerSize.Set(float64(size))
		return nil
	}

	ids, err := l.IDs(ctx)
	if err != nil {
		return err
	}
	next, err := appendID(ids, id)
	if err != nil || next == "" {
		return err
	}
	if err := l.store.Set(ctx, LedgerKey, next); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	metrics.LedgerSize.Set(float64(len(ids) + 1))
	return nil
}

// appendID returns the encoded ledger with id appended, or "" when id is
// already present.
func appendID(ids []string, id string) (string, error) {
	for _, existing := range ids {
		if existing == id {
			return "", nil
		}
	}
	data, err := json.Marshal(append(ids, id))
	if err != nil {
		return "", fmt.Errorf("encode ledger: %w", err)
	}
	return string(data), nil
}

// LastRunDate returns the day of the last completed automatic pass. found is
// false if no pass has ever completed.
func (l *Ledger) LastRunDate(ctx context.Context) (day time.Time, found bool, err error) {
	raw, found, err := l.store.Get(ctx, RunMarkerKey)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load run marker: %w", err)
	}
	if !found || raw == "" {
		return time.Time{}, false, nil
	}

	day, err = time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse run marker %q: %w", raw, err)
	}
	return day, true, nil
}

// SetLastRunDate records day (UTC calendar date) as the last completed pass.
func (l *Ledger) SetLastRunDate(ctx context.Context, day time.Time) error {
	if err := l.store.Set(ctx, RunMarkerKey, day.UTC().Format(DateLayout)); err != nil {
		return fmt.Errorf("save run marker: %w", err)
	}
	return nil
}

// sameDay reports whether a and b fall on the same UTC calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
