package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewMemoryStore(4)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	m.Set(ctx, "quote:AAPL", []byte(`{}`), time.Minute)
	_, ok := m.Get(ctx, "quote:AAPL")
	require.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = m.Get(ctx, "quote:AAPL")
	require.False(t, ok, "entry must expire exactly at its TTL")
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore(2)
	ctx := context.Background()

	m.Set(ctx, "a", []byte("1"), time.Hour)
	m.Set(ctx, "b", []byte("2"), time.Hour)
	_, _ = m.Get(ctx, "a")
	m.Set(ctx, "c", []byte("3"), time.Hour)

	_, ok := m.Get(ctx, "b")
	require.False(t, ok, "b was least recently used")
	v, ok := m.Get(ctx, "a")
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore(2)
	ctx := context.Background()
	m.Set(ctx, "a", []byte("1"), time.Hour)
	m.Delete(ctx, "a")

	_, ok := m.Get(ctx, "a")
	require.False(t, ok)
}
