package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/cache"
)

func TestSetGetRoundTrip(t *testing.T) {
	c := cache.New(true)

	etag := c.Set("k", []byte(`{"a":1}`), time.Minute)
	require.NotEmpty(t, etag)

	data, gotETag, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), data)
	assert.Equal(t, etag, gotETag)
}

func TestGetMissesAfterTTL(t *testing.T) {
	c := cache.New(true)
	c.Set("k", []byte("x"), -time.Second)

	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDisabledCacheNeverStores(t *testing.T) {
	c := cache.New(false)

	// Still returns a usable ETag so handlers can do 304 revalidation.
	etag := c.Set("k", []byte("x"), time.Minute)
	assert.NotEmpty(t, etag)

	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestFlushDropsEverything(t *testing.T) {
	c := cache.New(true)
	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), time.Minute)

	c.Flush()

	_, _, okA := c.Get("a")
	_, _, okB := c.Get("b")
	assert.False(t, okA)
	assert.False(t, okB)
}

func TestETagStableForSameBody(t *testing.T) {
	c := cache.New(true)
	first := c.Set("k", []byte("same"), time.Minute)
	second := c.Set("k2", []byte("same"), time.Minute)
	assert.Equal(t, first, second)
}

func TestCheckETagMatch(t *testing.T) {
	etag := cache.ComputeETag([]byte("body"))

	assert.True(t, cache.CheckETagMatch(etag, etag))
	assert.False(t, cache.CheckETagMatch("", etag))
	assert.False(t, cache.CheckETagMatch(`"other"`, etag))
}

func TestStats(t *testing.T) {
	c := cache.New(true)
	c.Set("live", []byte("1"), time.Minute)
	c.Set("dead", []byte("2"), -time.Second)

	stats := c.CurrentStats()
	assert.True(t, stats.Enabled)
	assert.Equal(t, 2, stats.TotalKeys)
	assert.Equal(t, 1, stats.ActiveKeys)
	assert.Equal(t, 1, stats.ExpiredKeys)
}
