package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/couchcryptid/pna-map-generator/internal/observability"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingProvider struct {
	calls  int
	result *geojson.FeatureCollection
	err    error
}

func (m *countingProvider) Isochrone(_ context.Context, _ domain.IsochroneRequest) (*geojson.FeatureCollection, error) {
	m.calls++
	return m.result, m.err
}

func polygon() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Polygon{{{-1.5, 53.8}, {-1.4, 53.8}, {-1.5, 53.9}, {-1.5, 53.8}}}))
	return fc
}

var leeds = domain.IsochroneRequest{Lon: -1.548, Lat: 53.796, Mode: domain.Driving, Minutes: 20}

// --- CachedProvider tests ---

func TestCachedProvider_CacheHit(t *testing.T) {
	inner := &countingProvider{result: polygon()}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedProvider(inner, 10, metrics)

	r1, err := cached.Isochrone(context.Background(), leeds)
	require.NoError(t, err)
	r2, err := cached.Isochrone(context.Background(), leeds)
	require.NoError(t, err)

	assert.Same(t, r1, r2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.IsochroneCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.IsochroneCache.WithLabelValues("miss")), 0)
}

func TestCachedProvider_DifferentKeysMiss(t *testing.T) {
	inner := &countingProvider{result: polygon()}
	cached := NewCachedProvider(inner, 10, observability.NewMetricsForTesting())

	walking := leeds
	walking.Mode = domain.Walking
	longer := leeds
	longer.Minutes = 30

	for _, req := range []domain.IsochroneRequest{leeds, walking, longer} {
		_, err := cached.Isochrone(context.Background(), req)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.calls)
}

func TestCachedProvider_EmptyResultNotCached(t *testing.T) {
	inner := &countingProvider{result: geojson.NewFeatureCollection()}
	cached := NewCachedProvider(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Isochrone(context.Background(), leeds)
	_, _ = cached.Isochrone(context.Background(), leeds)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedProvider_ErrorNotCached(t *testing.T) {
	inner := &countingProvider{err: errors.New("boom")}
	cached := NewCachedProvider(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.Isochrone(context.Background(), leeds)
	require.Error(t, err)
	_, err = cached.Isochrone(context.Background(), leeds)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "driving|-1.548000,53.796000|20", cacheKey(leeds))
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)
	a := polygon()
	c.put("a", a)

	got, ok := c.get("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", polygon())
	c.put("b", polygon())

	// Touch "a" so "b" becomes the eviction candidate.
	_, _ = c.get("a")
	c.put("c", polygon())

	_, ok := c.get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.len())
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)
	first, second := polygon(), polygon()
	c.put("a", first)
	c.put("a", second)

	got, ok := c.get("a")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, c.len())
}

func TestLRUCache_MinimumSize(t *testing.T) {
	c := newLRUCache(0)
	c.put("a", polygon())
	c.put("b", polygon())

	assert.Equal(t, 1, c.len())
	_, ok := c.get("b")
	assert.True(t, ok)
}
