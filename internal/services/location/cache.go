// Package location caches delivery-location distance lookups.
//
// Lookups are served from an in-process map of immutable entries. A miss
// runs exactly one resolution per fingerprint at a time; concurrent callers
// for the same fingerprint wait on that resolution instead of calling the
// provider themselves. Failures are never cached.
package location

import (
	"context"
	"fmt"
	"rental-quote-service/internal/apperr"
	"rental-quote-service/internal/domain"
	"rental-quote-service/internal/logx"
	"rental-quote-service/internal/metrics"
	"rental-quote-service/internal/platform/obs"
	"rental-quote-service/internal/ports"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Options configures a Cache. Zero values take defaults.
type Options struct {
	TTL time.Duration
	// ResolveTimeout bounds a single upstream resolution, independent of
	// the context of whichever caller started it.
	ResolveTimeout time.Duration
	Workers        int
	QueueSize      int
	SweepInterval  time.Duration
	// Store is an optional shared second-level cache.
	Store   ports.DistanceStore
	Metrics *metrics.Metrics
	Logger  logx.Logger
	Now     func() time.Time
}

// Cache memoizes delivery location resolutions in memory, optionally backed
// by a shared store. Concurrent misses for one fingerprint share a single
// upstream call.
type Cache struct {
	resolver ports.DistanceResolver
	branches ports.BranchRepository
	store    ports.DistanceStore
	metrics  *metrics.Metrics
	logger   logx.Logger
	now      func() time.Time

	ttl            time.Duration
	resolveTimeout time.Duration
	workers        int
	sweepInterval  time.Duration

	entries sync.Map // fingerprint -> *domain.CacheEntry
	size    atomic.Int64
	flights singleflight.Group
	queue   chan domain.DeliveryLocation
}

// ClearResult reports how many entries an administrative clear removed
// from each level.
type ClearResult struct {
	Memory int `json:"memory"`
	Shared int `json:"shared"`
}

type fillResult struct {
	entry  *domain.CacheEntry
	cached bool
}

// New builds a Cache. Call Run to start the prefetch workers and sweep.
func New(resolver ports.DistanceResolver, branches ports.BranchRepository, opts Options) *Cache {
	c := &Cache{
		resolver:       resolver,
		branches:       branches,
		store:          opts.Store,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
		now:            opts.Now,
		ttl:            opts.TTL,
		resolveTimeout: opts.ResolveTimeout,
		workers:        opts.Workers,
		sweepInterval:  opts.SweepInterval,
	}
	if c.logger == nil {
		c.logger = logx.Nop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.ttl <= 0 {
		c.ttl = 72 * time.Hour
	}
	if c.resolveTimeout <= 0 {
		c.resolveTimeout = 20 * time.Second
	}
	if c.workers <= 0 {
		c.workers = 1
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	c.queue = make(chan domain.DeliveryLocation, queueSize)
	return c
}

// GetOrCompute returns the distance for loc and whether it came from a
// cache level rather than a fresh provider call.
//
// If ctx ends while waiting on an in-flight resolution, the caller gets
// ctx.Err() but the resolution keeps running and populates the cache.
func (c *Cache) GetOrCompute(ctx context.Context, loc domain.DeliveryLocation) (domain.DistanceResult, bool, error) {
	if loc.Empty() {
		return domain.DistanceResult{}, false, apperr.Invalid("delivery_location", "must not be empty")
	}

	if e := c.load(loc.Fingerprint); e.Fresh(c.now()) {
		c.metrics.CacheHit()
		return e.Result, true, nil
	}
	c.metrics.CacheMiss()

	ch := c.flights.DoChan(loc.Fingerprint, func() (any, error) {
		return c.fill(ctx, loc)
	})

	select {
	case <-ctx.Done():
		return domain.DistanceResult{}, false, fmt.Errorf("location lookup: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			c.metrics.LookupError()
			return domain.DistanceResult{}, false, res.Err
		}
		f := res.Val.(*fillResult)
		return f.entry.Result, f.cached, nil
	}
}

// fill runs inside the per-fingerprint flight. parent only contributes
// request-scoped values; its cancellation is ignored.
func (c *Cache) fill(parent context.Context, loc domain.DeliveryLocation) (_ *fillResult, err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.resolveTimeout)
	defer cancel()
	defer obs.Time(ctx, c.logger, "location.fill")(&err)

	fp := loc.Fingerprint
	prev := c.load(fp)
	if prev.Fresh(c.now()) {
		return &fillResult{entry: prev, cached: true}, nil
	}

	if c.store != nil {
		e, err := c.store.Get(ctx, fp)
		switch {
		case err != nil:
			c.logger.Warn("shared location cache read failed",
				logx.String("fingerprint", fp), logx.Err(err))
		case e.Fresh(c.now()):
			c.put(e)
			return &fillResult{entry: e, cached: true}, nil
		}
	}

	branches, err := c.branches.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("location lookup: list branches: %w", err)
	}

	res, err := c.resolver.Resolve(ctx, branches, loc)
	c.metrics.ProviderCall(err)
	if err != nil {
		return nil, err
	}

	stored := c.now()
	if res.ComputedAt.IsZero() {
		res.ComputedAt = stored
	}
	var gen uint64 = 1
	if prev != nil {
		gen = prev.Generation + 1
	}
	entry := &domain.CacheEntry{
		Fingerprint: fp,
		Location:    loc,
		Result:      res,
		StoredAt:    stored,
		ExpiresAt:   stored.Add(c.ttl),
		Generation:  gen,
	}
	c.put(entry)

	if c.store != nil {
		if err := c.store.Put(ctx, entry); err != nil {
			c.logger.Warn("shared location cache write failed",
				logx.String("fingerprint", fp), logx.Err(err))
		}
	}

	return &fillResult{entry: entry}, nil
}

func (c *Cache) load(fp string) *domain.CacheEntry {
	v, ok := c.entries.Load(fp)
	if !ok {
		return nil
	}
	return v.(*domain.CacheEntry)
}

func (c *Cache) put(e *domain.CacheEntry) {
	if _, loaded := c.entries.Swap(e.Fingerprint, e); !loaded {
		c.size.Add(1)
	}
	c.metrics.SetCacheEntries(c.Len())
}

func (c *Cache) remove(fp string) bool {
	if _, ok := c.entries.LoadAndDelete(fp); ok {
		c.size.Add(-1)
		return true
	}
	return false
}

// Len returns the number of in-process entries, fresh or stale.
func (c *Cache) Len() int { return int(c.size.Load()) }

// Get returns the entry for a fingerprint from either level.
func (c *Cache) Get(ctx context.Context, fingerprint string) (*domain.CacheEntry, error) {
	if e := c.load(fingerprint); e != nil {
		return e, nil
	}
	if c.store != nil {
		e, err := c.store.Get(ctx, fingerprint)
		if err != nil {
			return nil, fmt.Errorf("cache entry %s: %w", fingerprint, err)
		}
		if e != nil {
			return e, nil
		}
	}
	return nil, fmt.Errorf("cache entry %s: %w", fingerprint, apperr.ErrNotFound)
}

// List returns in-process entries matching pattern, ordered by address.
func (c *Cache) List(pattern string) []domain.CacheEntry {
	p := domain.CompilePattern(pattern)
	out := make([]domain.CacheEntry, 0, c.Len())
	c.entries.Range(func(_, v any) bool {
		e := v.(*domain.CacheEntry)
		if p.Matches(e.Fingerprint, e.Location.Normalized) {
			out = append(out, *e)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].Location.Normalized < out[j].Location.Normalized
	})
	return out
}

// Clear removes entries matching pattern from both levels.
func (c *Cache) Clear(ctx context.Context, pattern string) (ClearResult, error) {
	p := domain.CompilePattern(pattern)

	var res ClearResult
	c.entries.Range(func(k, v any) bool {
		e := v.(*domain.CacheEntry)
		if p.Matches(e.Fingerprint, e.Location.Normalized) && c.remove(k.(string)) {
			res.Memory++
		}
		return true
	})
	c.metrics.SetCacheEntries(c.Len())

	if c.store != nil {
		n, err := c.store.Delete(ctx, pattern)
		if err != nil {
			return res, fmt.Errorf("clear shared location cache: %w", err)
		}
		res.Shared = n
	}

	c.logger.Info("location cache cleared",
		logx.String("pattern", p.String()),
		logx.Int("memory", res.Memory),
		logx.Int("shared", res.Shared),
	)
	return res, nil
}

// Sweep drops expired in-process entries and returns how many it removed.
func (c *Cache) Sweep() int {
	now := c.now()
	n := 0
	c.entries.Range(func(k, v any) bool {
		if !v.(*domain.CacheEntry).Fresh(now) {
			// Only delete the exact entry observed; a concurrent refill wins.
			if c.entries.CompareAndDelete(k, v) {
				c.size.Add(-1)
				n++
			}
		}
		return true
	})
	if n > 0 {
		c.metrics.SetCacheEntries(c.Len())
	}
	return n
}

// Stats is a point-in-time view of the cache and its prefetch queue.
type Stats struct {
	Entries       int           `json:"entries"`
	QueueDepth    int           `json:"prefetch_queue_depth"`
	QueueCapacity int           `json:"prefetch_queue_capacity"`
	Workers       int           `json:"prefetch_workers"`
	TTL           time.Duration `json:"-"`
}

func (c *Cache) Stats() Stats {
	return Stats{
		Entries:       c.Len(),
		QueueDepth:    len(c.queue),
		QueueCapacity: cap(c.queue),
		Workers:       c.workers,
		TTL:           c.ttl,
	}
}
