package cache

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
)

// Option customises a Cache.
type Option func(*Cache)

// WithTTL keeps templates from sources that cannot be stat'ed (URLs) for ttl.
// Zero, the default, never caches them.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger injects a logger for cache events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// Stats counts cache activity since construction.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Reloads uint64
}

type entry struct {
	tpl      pkgtemplate.Template
	loadedAt time.Time
	statable bool
}

// Cache memoises templates keyed by source. A cached template is served only
// while its version still matches what the underlying loader reports; sources
// without version information expire after the configured TTL.
type Cache struct {
	loader pkgtemplate.Loader
	stater pkgtemplate.Stater
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
	stats   Stats
	group   singleflight.Group
}

// Ensure Cache can stand in for any Loader.
var _ pkgtemplate.Loader = (*Cache)(nil)

// New wraps loader with a cache.
func New(loader pkgtemplate.Loader, options ...Option) *Cache {
	c := &Cache{
		loader:  loader,
		logger:  zap.NewNop(),
		now:     time.Now,
		entries: make(map[string]entry),
	}
	if s, ok := loader.(pkgtemplate.Stater); ok {
		c.stater = s
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Load returns the cached template for src when it is still current, and
// otherwise loads it through the wrapped loader. Concurrent loads of the same
// source share one underlying read.
func (c *Cache) Load(ctx context.Context, src pkgtemplate.Source) (pkgtemplate.Template, error) {
	if c == nil || c.loader == nil {
		return pkgtemplate.Template{}, errors.New("cache: loader is nil")
	}
	if src == nil {
		return pkgtemplate.Template{}, errors.New("cache: source is nil")
	}

	key := pkgtemplate.Key(src)

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		fresh, err := c.fresh(ctx, src, cached)
		if err != nil {
			c.Invalidate(src)
			return pkgtemplate.Template{}, err
		}
		if fresh {
			c.count(func(s *Stats) { s.Hits++ })
			return cached.tpl, nil
		}
		c.count(func(s *Stats) { s.Reloads++ })
		c.logger.Debug("template changed, reloading", zap.String("source", key))
	} else {
		c.count(func(s *Stats) { s.Misses++ })
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.load(ctx, src, key)
	})
	if err != nil {
		return pkgtemplate.Template{}, err
	}
	return v.(pkgtemplate.Template), nil
}

func (c *Cache) load(ctx context.Context, src pkgtemplate.Source, key string) (pkgtemplate.Template, error) {
	tpl, err := c.loader.Load(ctx, src)
	if err != nil {
		return pkgtemplate.Template{}, err
	}

	statable := c.stater != nil && !tpl.Version().IsZero() && src.Kind() != pkgtemplate.SourceKindURL
	if !statable && c.ttl == 0 {
		return tpl, nil
	}

	c.mu.Lock()
	c.entries[key] = entry{tpl: tpl, loadedAt: c.now(), statable: statable}
	c.mu.Unlock()
	return tpl, nil
}

func (c *Cache) fresh(ctx context.Context, src pkgtemplate.Source, e entry) (bool, error) {
	if !e.statable {
		return c.now().Sub(e.loadedAt) < c.ttl, nil
	}

	version, err := c.stater.Stat(ctx, src)
	if errors.Is(err, pkgtemplate.ErrStatUnsupported) {
		return c.now().Sub(e.loadedAt) < c.ttl, nil
	}
	if err != nil {
		return false, err
	}
	return version.Equal(e.tpl.Version()), nil
}

// Invalidate drops the cached template for src.
func (c *Cache) Invalidate(src pkgtemplate.Source) {
	if src == nil {
		return
	}
	c.invalidateKey(pkgtemplate.Key(src))
}

func (c *Cache) invalidateKey(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Purge drops every cached template.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Len reports how many templates are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.stats
}

func (c *Cache) count(fn func(*Stats)) {
	c.mu.Lock()
	fn(&c.stats)
	c.mu.Unlock()
}

// InvalidatePath drops cached file sources that refer to path, whether they
// were loaded through a relative or an absolute location. It reports whether
// anything was removed.
func (c *Cache) InvalidatePath(path string) bool {
	target, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := false
	for key, e := range c.entries {
		src := e.tpl.Source()
		if src.Kind() != pkgtemplate.SourceKindFile {
			continue
		}
		abs, err := filepath.Abs(src.Location())
		if err != nil || abs != target {
			continue
		}
		delete(c.entries, key)
		removed = true
	}
	return removed
}
