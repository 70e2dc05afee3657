package fetch

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long a loaded document is reused.
const DefaultCacheTTL = time.Minute

// CachedLoader memoizes loaded documents per location and coalesces
// concurrent loads of the same location into one request. Failures are
// never cached.
type CachedLoader struct {
	options   *Options
	cacheTTL  time.Duration
	skipCache bool // For testing or forcing fresh loads
	load      func(ctx context.Context, location string, opts *Options) (*Result, error)
	now       func() time.Time

	group      singleflight.Group
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	generation uint64 // bumped by every invalidation
}

type cacheEntry struct {
	result   *Result
	loadedAt time.Time
}

// CachedLoaderConfig holds configuration for the cached loader.
type CachedLoaderConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
}

// DefaultCachedLoaderConfig returns sensible defaults.
func DefaultCachedLoaderConfig() *CachedLoaderConfig {
	return &CachedLoaderConfig{
		CacheTTL:  DefaultCacheTTL,
		SkipCache: false,
		Options:   DefaultOptions(),
	}
}

// NewCachedLoader creates a new cached loader.
func NewCachedLoader(config *CachedLoaderConfig) *CachedLoader {
	if config == nil {
		config = DefaultCachedLoaderConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	return &CachedLoader{
		options:   config.Options,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
		load:      Load,
		now:       time.Now,
		entries:   make(map[string]cacheEntry),
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool      // Whether this result came from cache
	LoadedAt  time.Time // When the underlying load completed
}

// Fetch returns a fresh cached document or loads it. Concurrent callers for
// the same location share one load; each caller still honors its own ctx.
func (c *CachedLoader) Fetch(ctx context.Context, location string) (*CachedResult, error) {
	if !c.skipCache {
		if entry, ok := c.lookup(location); ok {
			return &CachedResult{Result: entry.result, FromCache: true, LoadedAt: entry.loadedAt}, nil
		}
	}

	gen := c.currentGeneration()
	// Keyed by generation so a load started before an invalidation is never
	// joined by a caller that arrives after it.
	key := strconv.FormatUint(gen, 10) + "|" + location
	ch := c.group.DoChan(key, func() (any, error) {
		// Detached so one caller's cancellation does not fail the others.
		result, err := c.load(context.WithoutCancel(ctx), location, c.options)
		if err != nil {
			return nil, err
		}
		entry := cacheEntry{result: result, loadedAt: c.now()}
		if !c.skipCache {
			c.store(location, entry, gen)
		}
		return entry, nil
	})

	select {
	case <-ctx.Done():
		return nil, &Error{Location: location, Message: "canceled", Cause: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		entry := res.Val.(cacheEntry)
		return &CachedResult{Result: entry.result, FromCache: false, LoadedAt: entry.loadedAt}, nil
	}
}

// Load implements Loader.
func (c *CachedLoader) Load(ctx context.Context, location string) (*Result, error) {
	cached, err := c.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	return cached.Result, nil
}

// Invalidate drops the cached document for location. Loads already in
// flight still complete for their callers but are not cached.
func (c *CachedLoader) Invalidate(location string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	delete(c.entries, location)
}

// InvalidateAll drops every cached document.
func (c *CachedLoader) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.entries = make(map[string]cacheEntry)
}

func (c *CachedLoader) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// store caches entry unless an invalidation happened after the load began.
func (c *CachedLoader) store(location string, entry cacheEntry, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return
	}
	c.entries[location] = entry
}

func (c *CachedLoader) lookup(location string) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[location]
	if !ok || c.now().Sub(entry.loadedAt) > c.cacheTTL {
		return cacheEntry{}, false
	}
	return entry, true
}
