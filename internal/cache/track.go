package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/subseek/subseek/internal/acquire"
	"github.com/subseek/subseek/internal/config"
	"github.com/subseek/subseek/internal/models"
)

const trackKeyVersion = "v1"

// TrackKey derives the cache key of a query: the external id plus the
// case-folded title with whitespace collapsed.
func TrackKey(q models.SearchQuery) string {
	title := strings.ToLower(strings.Join(strings.Fields(q.Title), " "))
	return "track:" + trackKeyVersion + ":" + strconv.FormatInt(q.TMDBID, 10) + ":" + title
}

// TrackCache stores acquired tracks as JSON.
type TrackCache struct {
	store Store
}

func NewTrackCache(store Store) *TrackCache {
	return &TrackCache{store: store}
}

// Get returns the cached track of q. An undecodable entry counts as a miss.
func (c *TrackCache) Get(ctx context.Context, q models.SearchQuery) (*models.Track, bool) {
	raw, ok := c.store.Get(ctx, TrackKey(q))
	if !ok {
		return nil, false
	}
	var track models.Track
	if err := json.Unmarshal(raw, &track); err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("key", TrackKey(q)).Msg("Discarding undecodable cached track")
		return nil, false
	}
	return &track, true
}

func (c *TrackCache) Put(ctx context.Context, q models.SearchQuery, track *models.Track) {
	raw, err := json.Marshal(track)
	if err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("key", TrackKey(q)).Msg("Failed to encode track for cache")
		return
	}
	c.store.Set(ctx, TrackKey(q), raw)
}

// cachedAcquirer serves repeated queries from a TrackCache. Only successful
// acquisitions are stored, so a title that had no subtitle yesterday is
// searched again today.
type cachedAcquirer struct {
	inner  acquire.Acquirer
	tracks *TrackCache
}

// WrapAcquirer returns an Acquirer that consults tracks before inner.
func WrapAcquirer(inner acquire.Acquirer, tracks *TrackCache) acquire.Acquirer {
	return &cachedAcquirer{inner: inner, tracks: tracks}
}

func (a *cachedAcquirer) Acquire(ctx context.Context, q models.SearchQuery) (*models.Track, error) {
	if track, ok := a.tracks.Get(ctx, q); ok {
		logger := config.GetLogger()
		logger.Debug().Str("title", q.Title).Int64("tmdbId", q.TMDBID).Msg("Serving subtitle track from cache")
		return track, nil
	}

	track, err := a.inner.Acquire(ctx, q)
	if err != nil {
		return nil, err
	}
	a.tracks.Put(ctx, q, track)
	return track, nil
}
