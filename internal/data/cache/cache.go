// Package cache holds per-token historical series with staleness and
// single-flight control around the upstream market-data source.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ethan-cdwll/insight/internal/analysis"
	"github.com/ethan-cdwll/insight/internal/data"
)

// Default retention parameters.
const (
	DefaultTTL          = 5 * time.Minute
	DefaultEvictAfter   = time.Hour
	DefaultLookback     = 30 * 24 * time.Hour
	DefaultFetchTimeout = 30 * time.Second
)

type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options 缓存参数，零值使用默认配置
type Options struct {
	TTL          time.Duration // 数据新鲜度窗口
	EvictAfter   time.Duration // 未访问条目的淘汰期限
	Lookback     time.Duration // 向上游请求的历史窗口
	FetchTimeout time.Duration
}

// SeriesCache caches one TokenSeries per token address. Concurrent
// callers for the same cold or stale key join a single in-flight fetch;
// a caller cancelling its request stops waiting without cancelling the
// shared fetch, which completes and populates the cache regardless.
type SeriesCache struct {
	source data.MarketDataSource
	logger Logger

	ttl          time.Duration
	evictAfter   time.Duration
	lookback     time.Duration
	fetchTimeout time.Duration

	now func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group
}

type entry struct {
	series     analysis.SeriesSnapshot
	lastAccess time.Time
}

// New creates a series cache in front of source.
func New(source data.MarketDataSource, opts Options, logger Logger) *SeriesCache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.EvictAfter <= 0 {
		opts.EvictAfter = DefaultEvictAfter
	}
	if opts.Lookback <= 0 {
		opts.Lookback = DefaultLookback
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}

	return &SeriesCache{
		source:       source,
		logger:       logger,
		ttl:          opts.TTL,
		evictAfter:   opts.EvictAfter,
		lookback:     opts.Lookback,
		fetchTimeout: opts.FetchTimeout,
		now:          time.Now,
		entries:      make(map[string]*entry),
	}
}

// Snapshot implements analysis.SeriesProvider. Fresh entries are served
// directly; misses and stale entries go through a single-flight fetch.
// On fetch failure an expired series is served marked Stale; with no
// series at all the call fails with ErrDataUnavailable.
func (c *SeriesCache) Snapshot(ctx context.Context, tokenAddress string) (analysis.SeriesSnapshot, error) {
	now := c.now()

	c.mu.RLock()
	ent, ok := c.entries[tokenAddress]
	if ok && now.Sub(ent.series.FetchedAt) <= c.ttl {
		snap := ent.series
		c.mu.RUnlock()
		c.touch(tokenAddress, now)
		return snap, nil
	}
	c.mu.RUnlock()

	// 上游请求与调用方的取消解耦：等待者取消只是不再等待
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(tokenAddress, func() (interface{}, error) {
		return c.fetch(fetchCtx, tokenAddress)
	})

	select {
	case <-ctx.Done():
		return analysis.SeriesSnapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return analysis.SeriesSnapshot{}, res.Err
		}
		return res.Val.(analysis.SeriesSnapshot), nil
	}
}

func (c *SeriesCache) fetch(ctx context.Context, tokenAddress string) (analysis.SeriesSnapshot, error) {
	fctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	series, err := c.source.FetchSeries(fctx, tokenAddress, c.lookback)
	now := c.now()

	if err != nil {
		c.mu.Lock()
		if ent, ok := c.entries[tokenAddress]; ok {
			ent.lastAccess = now
			snap := ent.series
			snap.Stale = true
			c.mu.Unlock()
			c.logger.Warn("serving stale series after fetch failure",
				"source", c.source.Name(), "token", tokenAddress, "err", err)
			return snap, nil
		}
		c.mu.Unlock()
		return analysis.SeriesSnapshot{}, fmt.Errorf("%w: fetch %s from %s: %w",
			analysis.ErrDataUnavailable, tokenAddress, c.source.Name(), err)
	}

	snap := analysis.SeriesSnapshot{Series: series, FetchedAt: now}

	c.mu.Lock()
	c.entries[tokenAddress] = &entry{series: snap, lastAccess: now}
	c.evictLocked(now)
	c.mu.Unlock()

	return snap, nil
}

func (c *SeriesCache) touch(tokenAddress string, now time.Time) {
	c.mu.Lock()
	if ent, ok := c.entries[tokenAddress]; ok {
		ent.lastAccess = now
	}
	c.mu.Unlock()
}

// evictLocked opportunistically purges entries unused beyond the
// eviction horizon. Caller must hold the write lock.
func (c *SeriesCache) evictLocked(now time.Time) {
	for key, ent := range c.entries {
		if now.Sub(ent.lastAccess) > c.evictAfter {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of cached entries.
func (c *SeriesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
