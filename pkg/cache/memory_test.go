package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory[int64](8)
	m.now = func() time.Time { return now }

	m.Set(ctx, "a", 7, time.Hour)
	v, ok := m.Get(ctx, "a")
	require.True(t, ok)
	require.Equal(t, int64(7), v)

	now = now.Add(59 * time.Minute)
	_, ok = m.Get(ctx, "a")
	require.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = m.Get(ctx, "a")
	require.False(t, ok)
}

func TestMemory_ZeroTTLKeepsEntry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](0)
	m.Set(ctx, "k", "v", 0)
	v, ok := m.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "v", v)

	m.Delete(ctx, "k")
	_, ok = m.Get(ctx, "k")
	require.False(t, ok)
}

func TestNamespace_IsolatesKeys(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[int64](8)
	a := Namespace[int64](m, "a")
	b := Namespace[int64](m, "b")

	a.Set(ctx, "x", 1, time.Minute)
	_, ok := b.Get(ctx, "x")
	require.False(t, ok)

	v, ok := m.Get(ctx, "a:x")
	require.True(t, ok)
	require.Equal(t, int64(1), v)
}
