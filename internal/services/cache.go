package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/frontline-fury-backend/internal/metrics"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached list responses
	CacheKeyPrefix = "cache:list:"
	// DefaultCacheTTL bounds how long an unused list entry stays in Redis
	DefaultCacheTTL = 30 * time.Second
)

// Generation identifies the collection version a list was read under.
// The zero value is not cacheable.
type Generation struct {
	value int64
	valid bool
}

// ListCache keeps the encoded list() response of each collection in Redis.
//
// Entries are keyed by a per-collection generation counter that every write
// bumps with INCR, so a list read before a write can never be served after
// it. When a bump fails the collection is bypassed until one succeeds. A nil
// client turns the cache into a no-op, and Redis errors never fail the caller.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger

	mu    sync.Mutex
	stale map[string]bool
}

func NewListCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *ListCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ListCache{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "list_cache").Logger(),
		stale:  map[string]bool{},
	}
}

// Enabled reports whether a Redis client backs the cache.
func (c *ListCache) Enabled() bool {
	return c != nil && c.client != nil
}

func generationKey(collection string) string {
	return CacheKeyPrefix + collection + ":gen"
}

func entryKey(collection string, gen Generation) string {
	return CacheKeyPrefix + collection + ":" + strconv.FormatInt(gen.value, 10)
}

// generation returns the current generation of collection. A collection
// whose last invalidation failed gets a new bump first.
func (c *ListCache) generation(ctx context.Context, collection string) Generation {
	c.mu.Lock()
	stale := c.stale[collection]
	c.mu.Unlock()
	if stale {
		if !c.bump(ctx, collection) {
			return Generation{}
		}
	}

	n, err := c.client.Get(ctx, generationKey(collection)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("collection", collection).Msg("cache generation read failed")
		return Generation{}
	}
	return Generation{value: n, valid: true}
}

// Get returns the cached JSON list of collection, if present, and the
// generation a fresh list must be stored under.
func (c *ListCache) Get(ctx context.Context, collection string) ([]byte, Generation, bool) {
	if !c.Enabled() {
		return nil, Generation{}, false
	}
	gen := c.generation(ctx, collection)
	if !gen.valid {
		metrics.ObserveCacheLookup(collection, false)
		return nil, gen, false
	}

	val, err := c.client.Get(ctx, entryKey(collection, gen)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("collection", collection).Msg("cache read failed")
		}
		metrics.ObserveCacheLookup(collection, false)
		return nil, gen, false
	}
	metrics.ObserveCacheLookup(collection, true)
	return val, gen, true
}

// Set stores body as the list of collection at generation gen.
func (c *ListCache) Set(ctx context.Context, collection string, gen Generation, body []byte) {
	if !c.Enabled() || !gen.valid {
		return
	}
	if err := c.client.Set(ctx, entryKey(collection, gen), body, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("collection", collection).Msg("cache write failed")
	}
}

// Invalidate moves collection to a new generation, orphaning every list
// stored before it.
func (c *ListCache) Invalidate(ctx context.Context, collection string) {
	if !c.Enabled() {
		return
	}
	c.bump(ctx, collection)
}

func (c *ListCache) bump(ctx context.Context, collection string) bool {
	err := c.client.Incr(ctx, generationKey(collection)).Err()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.stale[collection] = true
		c.log.Warn().Err(err).Str("collection", collection).Msg("cache invalidation failed, bypassing cache")
		return false
	}
	delete(c.stale, collection)
	return true
}

// Close releases the Redis client.
func (c *ListCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
