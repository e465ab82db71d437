package hwscan

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Source produces a device list; *Scanner is the usual one.
type Source interface {
	ScanDevices() ([]Device, error)
}

// Cache keeps the last successful scan for a while and makes concurrent
// callers share a single scan. Failures are never cached.
type Cache struct {
	src Source
	ttl time.Duration
	log *zap.Logger
	now func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	devices []Device
	fetched time.Time
	valid   bool
	gen     uint64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheLogger sets the cache logger.
func WithCacheLogger(l *zap.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache wraps src. A ttl <= 0 keeps a result until Invalidate.
func NewCache(src Source, ttl time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{
		src: src,
		ttl: ttl,
		log: zap.NewNop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Devices returns the cached device list, scanning when it is missing or
// stale. The returned slice is a private copy.
//
// ctx only bounds the wait: a scan already running keeps going and fills
// the cache for the next caller.
func (c *Cache) Devices(ctx context.Context) ([]Device, error) {
	if devices, ok := c.cached(); ok {
		return CloneDevices(devices), nil
	}

	ch := c.group.DoChan("scan", c.scan)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return CloneDevices(res.Val.([]Device)), nil
	}
}

func (c *Cache) scan() (any, error) {
	// A caller that missed the cache just before another flight stored
	// its result lands here.
	if devices, ok := c.cached(); ok {
		return devices, nil
	}

	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	start := c.now()
	devices, err := c.src.ScanDevices()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.gen {
		c.devices = devices
		c.fetched = start
		c.valid = true
	}
	c.log.Debug("device scan cached", zap.Int("devices", len(devices)), zap.Duration("took", c.now().Sub(start)))
	return devices, nil
}

func (c *Cache) cached() ([]Device, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(c.fetched) >= c.ttl {
		return nil, false
	}
	return c.devices, true
}

// Invalidate drops the cached result. A scan already in flight still
// answers its waiters but is not stored.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.devices = nil
	c.valid = false
	c.gen++
	c.group.Forget("scan")
}

// FetchedAt is when the cached result was scanned, zero if none.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid {
		return time.Time{}
	}
	return c.fetched
}
