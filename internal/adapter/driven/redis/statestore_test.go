package redis_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "github.com/ericfisherdev/artistban/internal/adapter/driven/redis"
)

// newTestStore connects to the server named by ARTISTBAN_TEST_REDIS_URL and
// namespaces every key under a fresh prefix. The test is skipped when the
// variable is unset.
func newTestStore(t *testing.T) *redisadapter.StateStore {
	t.Helper()

	url := os.Getenv("ARTISTBAN_TEST_REDIS_URL")
	if url == "" {
		t.Skip("ARTISTBAN_TEST_REDIS_URL not set")
	}

	store, err := redisadapter.NewStateStore(url, "artistban-test:"+uuid.NewString()+":")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Ping(context.Background()))
	return store
}

func TestNewStateStore_InvalidURL(t *testing.T) {
	_, err := redisadapter.NewStateStore("not a url", "p:")
	require.Error(t, err)
}

func TestStateStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	value, found, err := store.Get(context.Background(), "blockedArtists")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestStateStore_SetAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "lastRun", "2026-10-15"))
	require.NoError(t, store.Set(ctx, "lastRun", "2026-10-16"))

	value, found, err := store.Get(ctx, "lastRun")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2026-10-16", value)
}

func TestStateStore_UpdateConcurrentAppends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Update(ctx, "blockedArtists", func(value string, _ bool) (string, error) {
				return value + fmt.Sprintf("[%02d]", i), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	value, found, err := store.Get(ctx, "blockedArtists")
	require.NoError(t, err)
	require.True(t, found)
	for i := range 10 {
		assert.Contains(t, value, fmt.Sprintf("[%02d]", i))
	}
}

func TestStateStore_UpdateErrorLeavesValue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "blockedArtists", `["abc123"]`))

	err := store.Update(ctx, "blockedArtists", func(string, bool) (string, error) {
		return "", errors.New("decode failed")
	})

	require.Error(t, err)
	value, _, err := store.Get(ctx, "blockedArtists")
	require.NoError(t, err)
	assert.Equal(t, `["abc123"]`, value)
}
