package dataset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

// Cache memoizes source loads by source ID. Concurrent misses for one ID
// share a single load. Cached tables are shared between callers, which is
// safe because tables are never modified in place.
type Cache struct {
	mu      sync.RWMutex
	sources map[string]Source
	tables  map[string]*Table
	group   singleflight.Group

	// gens counts invalidations per ID; a load stores its table only if no
	// invalidation happened while it ran.
	gens map[string]uint64
}

// NewCache creates a cache over the given sources.
func NewCache(sources ...Source) *Cache {
	c := &Cache{
		sources: make(map[string]Source, len(sources)),
		tables:  make(map[string]*Table),
		gens:    make(map[string]uint64),
	}
	for _, s := range sources {
		c.sources[s.ID()] = s
	}
	return c
}

// Register adds or replaces a source and drops any table cached for it.
func (c *Cache) Register(s Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[s.ID()] = s
	c.invalidateLocked(s.ID())
}

// Get returns the cached table for id, loading it on a miss.
func (c *Cache) Get(ctx context.Context, id string) (*Table, error) {
	c.mu.RLock()
	t, ok := c.tables[id]
	c.mu.RUnlock()
	if ok {
		log.GetLoggerWithName("dataset.cache").Debug("cache hit",
			log.SourceKey, id, log.CacheHitKey, true)
		return t, nil
	}
	return c.load(ctx, id)
}

// Reload drops the cached table for id and loads it again.
func (c *Cache) Reload(ctx context.Context, id string) (*Table, error) {
	c.Invalidate(id)
	return c.load(ctx, id)
}

// Invalidate drops the cached table for id. A load of id still in flight
// is not shared with later callers and does not store its result.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(id)
}

// InvalidateAll drops every cached table.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.sources {
		c.invalidateLocked(id)
	}
	c.tables = make(map[string]*Table)
}

func (c *Cache) invalidateLocked(id string) {
	delete(c.tables, id)
	c.gens[id]++
	c.group.Forget(id)
}

// IDs returns the registered source IDs.
func (c *Cache) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.sources))
	for id := range c.sources {
		ids = append(ids, id)
	}
	return ids
}

func (c *Cache) load(ctx context.Context, id string) (*Table, error) {
	c.mu.RLock()
	src, ok := c.sources[id]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.NewValueError("Cache.Get", fmt.Sprintf("unknown data source %q", id))
	}

	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		// A load that finished between the cache check and Do already stored it.
		c.mu.RLock()
		cached, hit := c.tables[id]
		gen := c.gens[id]
		c.mu.RUnlock()
		if hit {
			return cached, nil
		}

		logger := log.GetLoggerWithName("dataset.cache")
		start := time.Now()

		t, err := src.Open(ctx)
		if err != nil {
			logger.Error("source load failed", log.SourceKey, id, log.ErrAttrKey, err)
			return nil, err
		}

		c.mu.Lock()
		if c.gens[id] == gen {
			c.tables[id] = t
		}
		c.mu.Unlock()

		logger.Info("source loaded",
			log.SourceKey, id,
			log.OperationKey, log.OperationLoad,
			log.RowsKey, t.Nrow(),
			log.ColumnsKey, t.Ncol(),
			log.CacheHitKey, false,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}
