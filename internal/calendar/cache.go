package calendar

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/username/workday-calendar/internal/metrics"
)

const defaultCacheTTL = 24 * time.Hour

// YearStore is a shared second-level cache for year data sets, typically
// Redis. A miss is (nil, false, nil).
type YearStore interface {
	Get(ctx context.Context, year int) (YearDataSet, bool, error)
	Set(ctx context.Context, year int, data YearDataSet) error
}

// CachedSource wraps a Source with a per-year cache. Concurrent misses for the
// same year share one upstream fetch, and a caller that gives up does not
// cancel it for the others. Empty results are never cached.
//
// Data sets returned from the cache are shared between callers and must not
// be modified.
type CachedSource struct {
	source  Source
	store   YearStore
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *zap.Logger

	group   singleflight.Group
	cacheMu sync.RWMutex
	cache   map[int]*cachedYear
}

type cachedYear struct {
	data      YearDataSet
	fetchedAt time.Time
}

// CacheOption customises a CachedSource
type CacheOption func(*CachedSource)

// WithYearStore adds a shared second-level cache
func WithYearStore(store YearStore) CacheOption {
	return func(c *CachedSource) {
		c.store = store
	}
}

// WithCacheMetrics reports hits and misses to m
func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *CachedSource) {
		c.metrics = m
	}
}

// WithCacheClock overrides the clock used for freshness checks
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *CachedSource) {
		c.now = now
	}
}

// NewCachedSource creates a cache in front of source. A zero ttl selects the
// default of 24h; a negative ttl keeps entries for the life of the process.
func NewCachedSource(source Source, ttl time.Duration, logger *zap.Logger, opts ...CacheOption) *CachedSource {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	c := &CachedSource{
		source: source,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
		cache:  make(map[int]*cachedYear),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the cached set for year, loading it on a miss
func (c *CachedSource) Fetch(ctx context.Context, year int) YearDataSet {
	if data, ok := c.lookup(year); ok {
		c.metrics.RecordCacheLookup("memory", true)
		c.logger.Debug("Using cached calendar year", zap.Int("year", year))
		return data
	}
	c.metrics.RecordCacheLookup("memory", false)

	ch := c.group.DoChan(strconv.Itoa(year), func() (interface{}, error) {
		// another flight may have filled the entry while we waited
		if data, ok := c.lookup(year); ok {
			return data, nil
		}

		// the flight outlives any single caller; sources bound it with their
		// own timeouts
		data := c.load(context.WithoutCancel(ctx), year)
		if len(data) > 0 {
			c.put(year, data)
		}
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("Joined in-flight calendar fetch", zap.Int("year", year))
		}
		return res.Val.(YearDataSet)
	case <-ctx.Done():
		c.logger.Debug("Caller left calendar fetch before it finished",
			zap.Int("year", year),
			zap.Error(ctx.Err()))
		return nil
	}
}

// Refresh reloads year from the wrapped source, skipping both cache layers,
// and replaces the cached entry. An empty result leaves the current entry in
// place.
func (c *CachedSource) Refresh(ctx context.Context, year int) YearDataSet {
	v, _, _ := c.group.Do(strconv.Itoa(year), func() (interface{}, error) {
		data := c.source.Fetch(ctx, year)
		if len(data) == 0 {
			c.logger.Warn("Calendar refresh returned no data, keeping cached entry",
				zap.Int("year", year))
			cached, _ := c.lookup(year)
			return cached, nil
		}

		c.put(year, data)
		c.save(ctx, year, data)
		return data, nil
	})

	return v.(YearDataSet)
}

// Invalidate drops the in-memory entry for year
func (c *CachedSource) Invalidate(year int) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	delete(c.cache, year)
}

// Clear clears the in-memory cache
func (c *CachedSource) Clear() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.cache = make(map[int]*cachedYear)
	c.logger.Info("Calendar cache cleared")
}

func (c *CachedSource) lookup(year int) (YearDataSet, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	cached, ok := c.cache[year]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(cached.fetchedAt) >= c.ttl {
		return nil, false
	}
	return cached.data, true
}

func (c *CachedSource) put(year int, data YearDataSet) {
	c.cacheMu.Lock()
	c.cache[year] = &cachedYear{
		data:      data,
		fetchedAt: c.now(),
	}
	c.cacheMu.Unlock()
}

// load consults the shared store before the wrapped source. Store failures
// only cost a trip upstream.
func (c *CachedSource) load(ctx context.Context, year int) YearDataSet {
	if c.store != nil {
		data, ok, err := c.store.Get(ctx, year)
		if err != nil {
			c.logger.Warn("Shared calendar cache read failed",
				zap.Int("year", year),
				zap.Error(err))
		}
		if ok && len(data) > 0 {
			c.metrics.RecordCacheLookup("shared", true)
			return data
		}
		c.metrics.RecordCacheLookup("shared", false)
	}

	data := c.source.Fetch(ctx, year)
	if len(data) > 0 {
		c.save(ctx, year, data)
	}

	return data
}

func (c *CachedSource) save(ctx context.Context, year int, data YearDataSet) {
	if c.store == nil {
		return
	}
	if err := c.store.Set(ctx, year, data); err != nil {
		c.logger.Warn("Shared calendar cache write failed",
			zap.Int("year", year),
			zap.Error(err))
	}
}
