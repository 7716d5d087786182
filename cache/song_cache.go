package cache

import (
	"context"
	"encoding/json"
	"time"

	"TuneFM/logger"
	"TuneFM/model"

	"github.com/redis/go-redis/v9"
)

const (
	songCatalogKey = "catalog:songs"
	songCatalogTTL = 10 * time.Minute
)

// SongCache is a Redis-backed cache of the full song catalog. Every failure
// degrades to a miss; callers fall back to the database and the last-known
// good state is never destroyed by a cache error.
type SongCache struct {
	client *redis.Client
}

// NewSongCache wraps a Redis client. A nil client yields a cache that always
// misses, which keeps the server usable without Redis.
func NewSongCache(client *redis.Client) *SongCache {
	return &SongCache{client: client}
}

// GetSongs returns the cached catalog and whether the cache hit.
func (c *SongCache) GetSongs(ctx context.Context) ([]*model.Song, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	payload, err := c.client.Get(ctx, songCatalogKey).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("song cache read failed", logger.ErrorField(err))
		}
		return nil, false
	}

	var songs []*model.Song
	if err := json.Unmarshal([]byte(payload), &songs); err != nil {
		logger.Warn("song cache payload corrupt, invalidating", logger.ErrorField(err))
		c.Invalidate(ctx)
		return nil, false
	}
	return songs, true
}

// SetSongs stores the catalog with a TTL.
func (c *SongCache) SetSongs(ctx context.Context, songs []*model.Song) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(songs)
	if err != nil {
		logger.Warn("song cache marshal failed", logger.ErrorField(err))
		return
	}

	if err := c.client.Set(ctx, songCatalogKey, payload, songCatalogTTL).Err(); err != nil {
		logger.Warn("song cache write failed", logger.ErrorField(err))
	}
}

// Invalidate drops the cached catalog. Called after ingestion or upload.
func (c *SongCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, songCatalogKey).Err(); err != nil {
		logger.Warn("song cache invalidate failed", logger.ErrorField(err))
	}
}
