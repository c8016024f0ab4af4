package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	entries map[string][]byte
	failAll bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.failAll {
		return nil, errors.New("cache down")
	}
	return c.entries[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if c.failAll {
		return errors.New("cache down")
	}
	c.entries[key] = value
	return nil
}

func TestFirstVisitReturnsNothing(t *testing.T) {
	ring := New(newFakeCache(), time.Hour)

	assert.Empty(t, ring.Visit(context.Background(), 1, 10))
	assert.Equal(t, []int64{10}, ring.Recent(context.Background(), 1))
}

func TestVisitsAreMostRecentFirst(t *testing.T) {
	ring := New(newFakeCache(), time.Hour)
	ctx := context.Background()

	ring.Visit(ctx, 1, 10)
	ring.Visit(ctx, 1, 11)

	assert.Equal(t, []int64{11, 10}, ring.Visit(ctx, 1, 12))
}

func TestRevisitBumpsToFront(t *testing.T) {
	ring := New(newFakeCache(), time.Hour)
	ctx := context.Background()

	ring.Visit(ctx, 1, 10)
	ring.Visit(ctx, 1, 11)
	ring.Visit(ctx, 1, 12)

	// Re-opening profile 10 must not report it as previously viewed
	// twice, and moves it to the front of the stored ring.
	assert.Equal(t, []int64{12, 11}, ring.Visit(ctx, 1, 10))
	assert.Equal(t, []int64{10, 12, 11}, ring.Recent(ctx, 1))
}

func TestRingIsCapped(t *testing.T) {
	ring := New(newFakeCache(), time.Hour)
	ctx := context.Background()

	for id := int64(10); id < 20; id++ {
		ring.Visit(ctx, 1, id)
	}

	recent := ring.Visit(ctx, 1, 20)
	assert.Equal(t, []int64{19, 18, 17, 16, 15}, recent)
	assert.Equal(t, []int64{20, 19, 18, 17, 16}, ring.Recent(ctx, 1))
}

func TestHistoriesAreIsolatedPerViewer(t *testing.T) {
	ring := New(newFakeCache(), time.Hour)
	ctx := context.Background()

	ring.Visit(ctx, 1, 10)
	assert.Empty(t, ring.Visit(ctx, 2, 10))
}

func TestCacheFailureDegradesToEmptyHistory(t *testing.T) {
	cache := newFakeCache()
	ring := New(cache, time.Hour)
	ctx := context.Background()

	ring.Visit(ctx, 1, 10)
	cache.failAll = true

	assert.Empty(t, ring.Visit(ctx, 1, 11))
	assert.Empty(t, ring.Recent(ctx, 1))
}

func TestCorruptPayloadIsIgnored(t *testing.T) {
	cache := newFakeCache()
	ring := New(cache, time.Hour)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "visited-1", []byte("not json"), time.Hour))

	assert.Empty(t, ring.Recent(ctx, 1))
	assert.Empty(t, ring.Visit(ctx, 1, 10))
	assert.Equal(t, []int64{10}, ring.Recent(ctx, 1))
}
