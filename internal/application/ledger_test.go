package application_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/artistban/internal/application"
)

func TestLedger_EmptyStore(t *testing.T) {
	ledger := application.NewLedger(newMemStateStore())
	ctx := context.Background()

	ids, err := ledger.IDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ok, err := ledger.Contains(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, ok)

	_, found, err := ledger.LastRunDate(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLedger_AddAndContains(t *testing.T) {
	store := newMemStateStore()
	ledger := application.NewLedger(store)
	ctx := context.Background()

	require.NoError(t, ledger.Add(ctx, "abc123"))
	require.NoError(t, ledger.Add(ctx, "def456"))

	ok, err := ledger.Contains(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := ledger.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc123", "def456"}, ids)

	raw, _ := store.raw(application.LedgerKey)
	assert.JSONEq(t, `["abc123","def456"]`, raw)
}

func TestLedger_AddIdempotent(t *testing.T) {
	ledger := application.NewLedger(newMemStateStore())
	ctx := context.Background()

	require.NoError(t, ledger.Add(ctx, "abc123"))
	require.NoError(t, ledger.Add(ctx, "abc123"))

	size, err := ledger.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestLedger_ReadsExistingSerializedList(t *testing.T) {
	store := newMemStateStore()
	require.NoError(t, store.Set(context.Background(), application.LedgerKey, `["abc123","def456"]`))
	ledger := application.NewLedger(store)

	set, err := ledger.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.Contains(t, set, "def456")
}

func TestLedger_CorruptList(t *testing.T) {
	store := newMemStateStore()
	require.NoError(t, store.Set(context.Background(), application.LedgerKey, `{not json`))
	ledger := application.NewLedger(store)

	_, err := ledger.Snapshot(context.Background())
	require.Error(t, err)
	require.Error(t, ledger.Add(context.Background(), "abc123"))
}

func TestLedger_StoreErrors(t *testing.T) {
	store := newMemStateStore()
	store.getErr = errors.New("disk gone")
	ledger := application.NewLedger(store)

	_, err := ledger.IDs(context.Background())
	require.ErrorIs(t, err, store.getErr)

	_, _, err = ledger.LastRunDate(context.Background())
	require.ErrorIs(t, err, store.getErr)
}

func TestLedger_RunMarker(t *testing.T) {
	store := newMemStateStore()
	ledger := application.NewLedger(store)
	ctx := context.Background()

	day := time.Date(2026, 10, 15, 23, 30, 0, 0, time.UTC)
	require.NoError(t, ledger.SetLastRunDate(ctx, day))

	raw, _ := store.raw(application.RunMarkerKey)
	assert.Equal(t, "2026-10-15", raw)

	got, found, err := ledger.LastRunDate(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestLedger_RunMarkerUsesUTCDay(t *testing.T) {
	store := newMemStateStore()
	ledger := application.NewLedger(store)

	// 01:00 in UTC+2 is still the previous day in UTC.
	local := time.Date(2026, 10, 16, 1, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	require.NoError(t, ledger.SetLastRunDate(context.Background(), local))

	raw, _ := store.raw(application.RunMarkerKey)
	assert.Equal(t, "2026-10-15", raw)
}

func TestLedger_CorruptRunMarker(t *testing.T) {
	store := newMemStateStore()
	require.NoError(t, store.Set(context.Background(), application.RunMarkerKey, "yesterday"))
	ledger := application.NewLedger(store)

	_, _, err := ledger.LastRunDate(context.Background())
	require.Error(t, err)
}

func TestLedger_AddUsesAtomicUpdate(t *testing.T) {
	store := newAtomicMemStore()
	ledger := application.NewLedger(store)
	ctx := context.Background()

	require.NoError(t, ledger.Add(ctx, "abc123"))
	require.NoError(t, ledger.Add(ctx, "abc123"))
	require.NoError(t, ledger.Add(ctx, "def456"))

	assert.Equal(t, 3, store.updates)
	raw, _ := store.raw(application.LedgerKey)
	assert.JSONEq(t, `["abc123","def456"]`, raw)
}

func TestLedger_ConcurrentInstancesKeepEveryID(t *testing.T) {
	store := newAtomicMemStore()
	instances := []*application.Ledger{application.NewLedger(store), application.NewLedger(store)}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, instances[i%2].Add(ctx, fmt.Sprintf("id%02d", i)))
		}()
	}
	wg.Wait()

	size, err := application.NewLedger(store).Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, size)
}

func TestLedger_AtomicUpdateCorruptList(t *testing.T) {
	store := newAtomicMemStore()
	require.NoError(t, store.Set(context.Background(), application.LedgerKey, "not json"))

	err := application.NewLedger(store).Add(context.Background(), "abc123")

	require.Error(t, err)
	raw, _ := store.raw(application.LedgerKey)
	assert.Equal(t, "not json", raw)
}
