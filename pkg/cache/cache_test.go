package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, target any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(b, target)
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = b
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *memoryCache) TTL() time.Duration { return time.Minute }

type item struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

func TestUseCacheLoadsOnce(t *testing.T) {
	c := newMemoryCache()
	calls := 0
	load := func(context.Context) (*item, error) {
		calls++
		return &item{ID: "er-1", Qty: 2}, nil
	}

	got, err := UseCache(context.Background(), c, "event_reward", "k1", load)
	require.NoError(t, err)
	require.Equal(t, 2, got.Qty)

	got, err = UseCache(context.Background(), c, "event_reward", "k1", load)
	require.NoError(t, err)
	require.Equal(t, "er-1", got.ID)
	require.Equal(t, 1, calls)

	Invalidate(context.Background(), c, "k1")
	_, err = UseCache(context.Background(), c, "event_reward", "k1", load)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestUseCacheDoesNotStoreErrors(t *testing.T) {
	c := newMemoryCache()
	boom := errors.New("boom")

	_, err := UseCache(context.Background(), c, "event", "k2", func(context.Context) (*item, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	require.Empty(t, c.items)
}

func TestUseCacheNilAndNoop(t *testing.T) {
	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return 7, nil
	}

	v, err := UseCache[int](context.Background(), nil, "x", "k", load)
	require.NoError(t, err)
	require.Equal(t, 7, v)

	v, err = UseCache[int](context.Background(), Noop{}, "x", "k", load)
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Equal(t, 2, calls)
}
