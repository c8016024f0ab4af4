package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	keyPrefix = "visited-"

	// DefaultTTL is how long a viewer's history survives without visits.
	DefaultTTL = 7 * 24 * time.Hour

	keep = 6 // ids retained per viewer
	show = 5 // ids surfaced back to the viewer
)

// Cache is the expiring key/value store backing the history ring.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Ring tracks the profiles a viewer has recently opened, most recent
// first. Visiting a profile returns the previously-viewed ids (current
// profile excluded) and records the new visit. Cache failures degrade
// to an empty history.
type Ring struct {
	cache Cache
	ttl   time.Duration
}

func New(cache Cache, ttl time.Duration) *Ring {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Ring{cache: cache, ttl: ttl}
}

func key(viewerID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, viewerID)
}

// Visit records that viewerID opened profileID and returns up to five
// profiles the viewer looked at before this one.
func (r *Ring) Visit(ctx context.Context, viewerID, profileID int64) []int64 {
	visited := r.read(ctx, viewerID)

	// Drop any earlier occurrence of the profile being opened now.
	recent := make([]int64, 0, len(visited))
	for _, id := range visited {
		if id != profileID {
			recent = append(recent, id)
		}
	}

	updated := append([]int64{profileID}, recent...)
	if len(updated) > keep {
		updated = updated[:keep]
	}
	if payload, err := json.Marshal(updated); err == nil {
		if err := r.cache.Set(ctx, key(viewerID), payload, r.ttl); err != nil {
			logrus.WithError(err).Debug("history: write failed")
		}
	}

	if len(recent) > show {
		recent = recent[:show]
	}
	return recent
}

// Recent returns the viewer's history without recording a visit.
func (r *Ring) Recent(ctx context.Context, viewerID int64) []int64 {
	visited := r.read(ctx, viewerID)
	if len(visited) > show {
		visited = visited[:show]
	}
	return visited
}

func (r *Ring) read(ctx context.Context, viewerID int64) []int64 {
	raw, err := r.cache.Get(ctx, key(viewerID))
	if err != nil {
		logrus.WithError(err).Debug("history: read failed")
		return nil
	}
	if raw == nil {
		return nil
	}

	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		logrus.WithField("payload", string(raw)).Debug("history: corrupt payload")
		return nil
	}
	return ids
}
