package presence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is an in-memory expiring cache with a manually advanced clock.
type fakeCache struct {
	now     time.Time
	entries map[string]fakeEntry
	sets    int
	failAll bool
}

type fakeEntry struct {
	value     []byte
	expiresAt time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{now: time.Unix(1_700_000_000, 0), entries: map[string]fakeEntry{}}
}

func (c *fakeCache) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.failAll {
		return nil, errors.New("cache down")
	}
	e, ok := c.entries[key]
	if !ok || !c.now.Before(e.expiresAt) {
		return nil, nil
	}
	return e.value, nil
}

func (c *fakeCache) GetMany(_ context.Context, keys []string) (map[string][]byte, error) {
	if c.failAll {
		return nil, errors.New("cache down")
	}
	found := map[string][]byte{}
	for _, k := range keys {
		if e, ok := c.entries[k]; ok && c.now.Before(e.expiresAt) {
			found[k] = e.value
		}
	}
	return found, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.failAll {
		return errors.New("cache down")
	}
	c.sets++
	c.entries[key] = fakeEntry{value: value, expiresAt: c.now.Add(ttl)}
	return nil
}

func TestRefreshAddsAuthenticatedUser(t *testing.T) {
	cache := newFakeCache()
	tracker := New(cache, time.Minute, 10)
	ctx := context.Background()

	assert.Equal(t, []int64{7}, tracker.Refresh(ctx, 7))
	assert.Equal(t, []int64{7, 8}, tracker.Refresh(ctx, 8))

	// An anonymous request sees the list but is never added to it.
	assert.Equal(t, []int64{7, 8}, tracker.Refresh(ctx, 0))
}

func TestRefreshBumpsExistingUserToEnd(t *testing.T) {
	cache := newFakeCache()
	tracker := New(cache, time.Minute, 10)
	ctx := context.Background()

	tracker.Refresh(ctx, 1)
	tracker.Refresh(ctx, 2)
	tracker.Refresh(ctx, 3)

	assert.Equal(t, []int64{2, 3, 1}, tracker.Refresh(ctx, 1))
}

func TestRefreshEvictsOldestPastMax(t *testing.T) {
	cache := newFakeCache()
	tracker := New(cache, time.Minute, 2)
	ctx := context.Background()

	tracker.Refresh(ctx, 1)
	tracker.Refresh(ctx, 2)

	// User 1 is the oldest entry and gets evicted from the front.
	assert.Equal(t, []int64{2, 3}, tracker.Refresh(ctx, 3))
}

func TestRefreshNeverExceedsMaxOrDuplicates(t *testing.T) {
	cache := newFakeCache()
	tracker := New(cache, time.Minute, 5)
	ctx := context.Background()

	users := []int64{1, 2, 3, 4, 2, 5, 6, 1, 7, 3, 3, 8}
	for _, u := range users {
		got := tracker.Refresh(ctx, u)
		assert.LessOrEqual(t, len(got), 5)
		seen := map[int64]bool{}
		for _, id := range got {
			assert.False(t, seen[id], "duplicate id %d in %v", id, got)
			seen[id] = true
		}
	}
}

func TestExpiredMarkerDropsUser(t *testing.T) {
	cache := newFakeCache()
	tracker := New(cache, time.Minute, 10)
	ctx := context.Background()

	tracker.Refresh(ctx, 1)
	cache.advance(30 * time.Second)
	tracker.Refresh(ctx, 2) // also renews the index TTL

	// User 1's marker lapses; the index itself is still live.
	cache.advance(45 * time.Second)
	assert.Equal(t, []int64{2, 3}, tracker.Refresh(ctx, 3))
}

func TestIndexExpiresAfterZeroTraffic(t *testing.T) {
	cache := newFakeCache()
	tracker := New(cache, time.Minute, 10)
	ctx := context.Background()

	tracker.Refresh(ctx, 1)
	cache.advance(2 * time.Minute)

	assert.Empty(t, tracker.Refresh(ctx, 0))
}

func TestAnonymousRefreshPerformsNoWrites(t *testing.T) {
	cache := newFakeCache()
	tracker := New(cache, time.Minute, 10)
	ctx := context.Background()

	tracker.Refresh(ctx, 1)
	writes := cache.sets

	tracker.Refresh(ctx, 0)
	assert.Equal(t, writes, cache.sets)
}

func TestCacheFailureDegradesToEmptyList(t *testing.T) {
	cache := newFakeCache()
	tracker := New(cache, time.Minute, 10)
	ctx := context.Background()

	tracker.Refresh(ctx, 1)
	cache.failAll = true

	assert.Empty(t, tracker.Refresh(ctx, 0))
	// Authenticated callers still get themselves back.
	assert.Equal(t, []int64{2}, tracker.Refresh(ctx, 2))
}

func TestMalformedIndexEntriesAreSkipped(t *testing.T) {
	cache := newFakeCache()
	tracker := New(cache, time.Minute, 10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "online-now", []byte(`[3, "junk", -1, 3, 9]`), time.Minute))
	require.NoError(t, cache.Set(ctx, "online-3", []byte("1"), time.Minute))
	require.NoError(t, cache.Set(ctx, "online-9", []byte("1"), time.Minute))

	assert.Equal(t, []int64{3, 9}, tracker.Refresh(ctx, 0))
}

func TestCorruptIndexPayloadIsIgnored(t *testing.T) {
	cache := newFakeCache()
	tracker := New(cache, time.Minute, 10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "online-now", []byte("not json"), time.Minute))

	assert.Empty(t, tracker.Refresh(ctx, 0))
}
