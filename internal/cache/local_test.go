package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string `json:"value"`
}

func TestLocalRoundTrip(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	require.NoError(t, l.Set(ctx, "k1", payload{Value: "a"}, time.Minute))

	var got payload
	ok, err := l.Get(ctx, "k1", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", got.Value)

	ok, err = l.Get(ctx, "absent", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalExpiry(t *testing.T) {
	l := NewLocal()
	now := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, l.Set(ctx, "k1", payload{Value: "a"}, time.Minute))
	assert.Equal(t, 1, l.Len())

	now = now.Add(2 * time.Minute)

	var got payload
	ok, _ := l.Get(ctx, "k1", &got)
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())
}

func TestLocalDelAndDelPrefix(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	for _, k := range []string{"pricing_1_a", "pricing_1_b", "pricing_2_a", "occupancy_1_a"} {
		require.NoError(t, l.Set(ctx, k, payload{Value: k}, time.Minute))
	}

	require.NoError(t, l.Del(ctx, "occupancy_1_a"))
	assert.Equal(t, 3, l.Len())

	n, err := l.DelPrefix(ctx, "pricing_1_")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, l.Len())

	var got payload
	ok, _ := l.Get(ctx, "pricing_2_a", &got)
	assert.True(t, ok)
}

func TestLocalReadsNeverAliasTheStore(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	type doc struct {
		Tags []string `json:"tags"`
	}
	require.NoError(t, l.Set(ctx, "k", doc{Tags: []string{"a", "b"}}, time.Minute))

	var first doc
	_, err := l.Get(ctx, "k", &first)
	require.NoError(t, err)
	first.Tags[0] = "mutated"

	var second doc
	_, err = l.Get(ctx, "k", &second)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, second.Tags)
}

func TestLocalJanitorBoundsMemory(t *testing.T) {
	l := NewLocal()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, l.Set(ctx, "short", payload{Value: "x"}, 5*time.Millisecond))
	require.NoError(t, l.Set(ctx, "long", payload{Value: "y"}, time.Minute))

	l.StartJanitor(ctx, 10*time.Millisecond)

	// Len ignores expired entries; count raw map entries to prove the
	// janitor physically removed the expired one
	rawLen := func() int {
		n := 0
		for i := range l.shards {
			s := &l.shards[i]
			s.mu.RLock()
			n += len(s.items)
			s.mu.RUnlock()
		}
		return n
	}
	assert.Eventually(t, func() bool {
		return rawLen() == 1
	}, time.Second, 10*time.Millisecond)
}
