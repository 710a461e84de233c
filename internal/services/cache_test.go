package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*ListCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewListCache(client, time.Minute, zerolog.Nop()), srv
}

func TestListCacheRoundTrip(t *testing.T) {
	cache, srv := newTestCache(t)
	ctx := context.Background()

	_, gen, ok := cache.Get(ctx, "feedbacks")
	assert.False(t, ok)
	require.True(t, gen.valid)

	cache.Set(ctx, "feedbacks", gen, []byte(`[{"rating":5}]`))
	body, _, ok := cache.Get(ctx, "feedbacks")
	require.True(t, ok)
	assert.JSONEq(t, `[{"rating":5}]`, string(body))
	assert.Equal(t, time.Minute, srv.TTL(entryKey("feedbacks", gen)))

	// Collections do not share entries.
	_, _, ok = cache.Get(ctx, "prebookings")
	assert.False(t, ok)

	cache.Invalidate(ctx, "feedbacks")
	_, next, ok := cache.Get(ctx, "feedbacks")
	assert.False(t, ok)
	assert.Equal(t, gen.value+1, next.value)
}

func TestListCacheDropsListsReadBeforeWrite(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	// A reader takes the generation, then a write lands before it stores.
	_, gen, ok := cache.Get(ctx, "feedbacks")
	require.False(t, ok)
	cache.Invalidate(ctx, "feedbacks")
	cache.Set(ctx, "feedbacks", gen, []byte(`[]`))

	_, _, ok = cache.Get(ctx, "feedbacks")
	assert.False(t, ok)
}

func TestListCacheExpires(t *testing.T) {
	cache, srv := newTestCache(t)
	ctx := context.Background()

	_, gen, _ := cache.Get(ctx, "prebookings")
	cache.Set(ctx, "prebookings", gen, []byte(`[]`))
	srv.FastForward(2 * time.Minute)

	_, _, ok := cache.Get(ctx, "prebookings")
	assert.False(t, ok)
}

func TestListCacheFailedInvalidationBypassesCache(t *testing.T) {
	cache, srv := newTestCache(t)
	ctx := context.Background()

	_, gen, _ := cache.Get(ctx, "feedbacks")
	cache.Set(ctx, "feedbacks", gen, []byte(`[]`))

	srv.SetError("ERR server unavailable")
	cache.Invalidate(ctx, "feedbacks")
	_, down, ok := cache.Get(ctx, "feedbacks")
	assert.False(t, ok)
	assert.False(t, down.valid)
	srv.SetError("")

	// The next lookup bumps the generation before reading.
	_, up, ok := cache.Get(ctx, "feedbacks")
	assert.False(t, ok)
	require.True(t, up.valid)
	assert.Greater(t, up.value, gen.value)

	cache.Set(ctx, "feedbacks", up, []byte(`[{"rating":1}]`))
	body, _, ok := cache.Get(ctx, "feedbacks")
	require.True(t, ok)
	assert.JSONEq(t, `[{"rating":1}]`, string(body))
}

func TestListCacheFailsOpen(t *testing.T) {
	cache, srv := newTestCache(t)
	ctx := context.Background()
	srv.Close()

	_, gen, ok := cache.Get(ctx, "feedbacks")
	assert.False(t, ok)
	assert.False(t, gen.valid)
	cache.Set(ctx, "feedbacks", gen, []byte(`[]`))
	cache.Invalidate(ctx, "feedbacks")
}

func TestDisabledListCache(t *testing.T) {
	cache := NewListCache(nil, 0, zerolog.Nop())
	ctx := context.Background()

	assert.False(t, cache.Enabled())
	_, gen, ok := cache.Get(ctx, "feedbacks")
	assert.False(t, ok)
	cache.Set(ctx, "feedbacks", gen, []byte(`[]`))
	cache.Invalidate(ctx, "feedbacks")
	assert.NoError(t, cache.Close())

	var nilCache *ListCache
	assert.False(t, nilCache.Enabled())
}
