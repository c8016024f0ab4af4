package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	indexKey     = "online-now"
	markerPrefix = "online-"

	// DefaultThreshold is how long a user stays online after their last request.
	DefaultThreshold = 15 * time.Minute
	// DefaultMax caps the size of the online index.
	DefaultMax = 50
)

// Cache is the expiring key/value store the tracker runs against. Get
// returns nil for absent or expired keys; GetMany returns only the keys
// that are still present.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Tracker maintains the bounded, recency-ordered set of online user IDs.
// The index lives under one cache key; each user additionally owns a
// marker key whose unexpired existence is what actually signals "online".
// The index is reconciled against the markers on every refresh, so a user
// drops out as soon as their own marker TTL lapses even while the index
// itself is still live.
type Tracker struct {
	cache     Cache
	threshold time.Duration
	max       int
}

func New(cache Cache, threshold time.Duration, max int) *Tracker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if max <= 0 {
		max = DefaultMax
	}
	return &Tracker{cache: cache, threshold: threshold, max: max}
}

// NewFromEnv builds a tracker configured by ONLINE_THRESHOLD (seconds)
// and ONLINE_MAX, falling back to the defaults.
func NewFromEnv(cache Cache) *Tracker {
	threshold := DefaultThreshold
	if v, err := strconv.Atoi(os.Getenv("ONLINE_THRESHOLD")); err == nil && v > 0 {
		threshold = time.Duration(v) * time.Second
	}
	max := DefaultMax
	if v, err := strconv.Atoi(os.Getenv("ONLINE_MAX")); err == nil && v > 0 {
		max = v
	}
	return New(cache, threshold, max)
}

func markerKey(id int64) string {
	return fmt.Sprintf("%s%d", markerPrefix, id)
}

// Refresh recomputes the online list and, for an authenticated caller
// (userID > 0), bumps them to the most-recently-active position and
// rewrites both their marker and the index. Anonymous callers (userID 0)
// only read. Cache failures degrade to an empty list; a refresh never
// fails the enclosing request.
func (t *Tracker) Refresh(ctx context.Context, userID int64) []int64 {
	ids := t.readIndex(ctx)

	// Keep only ids whose own marker is still unexpired.
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = markerKey(id)
	}
	fresh, err := t.cache.GetMany(ctx, keys)
	if err != nil {
		logrus.WithError(err).Debug("presence: marker probe failed")
		fresh = nil
	}
	online := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := fresh[markerKey(id)]; ok {
			online = append(online, id)
		}
	}

	if userID <= 0 {
		return online
	}

	// Bump the caller to the end (most recently active), dropping any
	// earlier occurrence, then evict from the front past the cap.
	kept := online[:0]
	for _, id := range online {
		if id != userID {
			kept = append(kept, id)
		}
	}
	online = append(kept, userID)
	for len(online) > t.max {
		online = online[1:]
	}

	if err := t.cache.Set(ctx, markerKey(userID), []byte("1"), t.threshold); err != nil {
		logrus.WithError(err).Debug("presence: marker write failed")
	}
	if payload, err := json.Marshal(online); err == nil {
		if err := t.cache.Set(ctx, indexKey, payload, t.threshold); err != nil {
			logrus.WithError(err).Debug("presence: index write failed")
		}
	}

	return online
}

// readIndex loads the stored id list, tolerating a missing key, a corrupt
// payload, and non-numeric or duplicate entries.
func (t *Tracker) readIndex(ctx context.Context) []int64 {
	raw, err := t.cache.Get(ctx, indexKey)
	if err != nil {
		logrus.WithError(err).Debug("presence: index read failed")
		return nil
	}
	if raw == nil {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		logrus.WithField("payload", string(raw)).Debug("presence: corrupt index payload")
		return nil
	}

	ids := make([]int64, 0, len(entries))
	seen := make(map[int64]bool, len(entries))
	for _, e := range entries {
		var n json.Number
		if err := json.Unmarshal(e, &n); err != nil {
			continue
		}
		id, err := n.Int64()
		if err != nil || id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
