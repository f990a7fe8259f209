package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the value of a missing key.
type LoadFunc func() (any, error)

// MemCache keeps loaded values in memory for a short time.
// Concurrent misses of the same key share a single load.
type MemCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	loads   singleflight.Group

	now     func() time.Time
	ticker  *time.Ticker
	cancel  context.CancelFunc
	stopped chan struct{}
}

type entry struct {
	value     any
	expiresAt time.Time
}

// NewMemCache creates a new memory cache, expired keys are dropped every cleanupInterval.
func NewMemCache(cleanupInterval time.Duration) *MemCache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	mc := &MemCache{
		entries: make(map[string]entry),
		now:     time.Now,
		ticker:  time.NewTicker(cleanupInterval),
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go mc.sweep(ctx)

	return mc
}

func (mc *MemCache) sweep(ctx context.Context) {
	defer close(mc.stopped)
	for {
		select {
		case <-mc.ticker.C:
			mc.dropExpired()
		case <-ctx.Done():
			return
		}
	}
}

func (mc *MemCache) dropExpired() {
	now := mc.now()

	mc.mu.Lock()
	defer mc.mu.Unlock()
	for key, e := range mc.entries {
		if !now.Before(e.expiresAt) {
			delete(mc.entries, key)
		}
	}
}

// Close stops the cleanup worker.
func (mc *MemCache) Close() {
	mc.cancel()
	mc.ticker.Stop()
	<-mc.stopped
}

// GetOrLoad returns the live value of key, or runs load and keeps its result for ttl.
// Failed loads are not cached.
func (mc *MemCache) GetOrLoad(key string, ttl time.Duration, load LoadFunc) (any, error) {
	if value, ok := mc.lookup(key); ok {
		return value, nil
	}

	value, err, _ := mc.loads.Do(key, func() (any, error) {
		// Another caller may have filled the key while we waited on the group.
		if value, ok := mc.lookup(key); ok {
			return value, nil
		}

		value, err := load()
		if err != nil {
			return nil, err
		}

		mc.mu.Lock()
		mc.entries[key] = entry{value: value, expiresAt: mc.now().Add(ttl)}
		mc.mu.Unlock()

		return value, nil
	})

	return value, err
}

func (mc *MemCache) lookup(key string) (any, bool) {
	mc.mu.RLock()
	e, ok := mc.entries[key]
	mc.mu.RUnlock()

	if !ok || !mc.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Forget drops a key, the next GetOrLoad reloads it.
func (mc *MemCache) Forget(key string) {
	mc.mu.Lock()
	delete(mc.entries, key)
	mc.mu.Unlock()
	mc.loads.Forget(key)
}

// Len returns the amount of stored keys, expired ones included until the next cleanup.
func (mc *MemCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.entries)
}
