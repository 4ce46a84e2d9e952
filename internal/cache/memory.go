package cache

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

type memoryEntry struct {
	expiry time.Time
	value  string
}

type InMemoryCache struct {
	class      string
	generation int64
	mu         sync.RWMutex
	segments   map[int64]map[string]memoryEntry
	site       string
	stop       chan struct{}
	ttl        time.Duration
	ttlChanged chan time.Duration
	uncycled   bool
}

var _ Cache = (*InMemoryCache)(nil)

func (c *InMemoryCache) Class() string {
	return c.class
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, seg := range c.segments {
		delete(seg, key)
	}
	return nil
}

func (c *InMemoryCache) Generation() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

func (c *InMemoryCache) Site() string {
	return c.site
}

func (c *InMemoryCache) TTL() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ttl
}

func (c *InMemoryCache) Uncycled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uncycled
}

func (c *InMemoryCache) Get(ctx context.Context, key string) (Hit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()

	if entry, ok := c.segments[c.generation][key]; ok {
		// expired entries are left for the reaper
		if now.After(entry.expiry) {
			return Hit{}, nil
		}
		return Hit{Found: true, Value: entry.value}, nil
	}

	// at most one other generation is kept
	for gen, seg := range c.segments {
		if gen == c.generation {
			continue
		}
		if entry, ok := seg[key]; ok && !now.After(entry.expiry) {
			return Hit{Found: true, Stale: true, Value: entry.value}, nil
		}
	}

	return Hit{}, nil
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	seg := c.segments[c.generation]
	if seg == nil {
		seg = map[string]memoryEntry{}
		c.segments[c.generation] = seg
	}
	seg[key] = memoryEntry{
		expiry: time.Now().Add(c.ttl),
		value:  value,
	}
	return nil
}

func (c *InMemoryCache) cycle(generation int64, previous int64, force bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation = generation
	if c.segments[generation] == nil {
		c.segments[generation] = map[string]memoryEntry{}
	}
	for g := range c.segments {
		if g == generation || (!force && g == previous) {
			continue
		}
		delete(c.segments, g)
	}
}

func (c *InMemoryCache) reap() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for _, seg := range c.segments {
		for key, entry := range seg {
			if now.After(entry.expiry) {
				delete(seg, key)
			}
		}
	}
}

func (c *InMemoryCache) reaper(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.reap()
		case next := <-c.ttlChanged:
			ticker.Reset(next)
			c.reap()
		}
	}
}

type InMemoryManager struct {
	caches     map[string]*InMemoryCache
	closed     bool
	generation int64
	log        logr.Logger
	mu         sync.RWMutex
	site       string
	ttl        time.Duration
}

var _ Manager = (*InMemoryManager)(nil)

func (m *InMemoryManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for _, c := range m.caches {
		close(c.stop)
	}
}

func (m *InMemoryManager) Cycle(generation int64, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.generation
	m.generation = generation

	for _, c := range m.caches {
		if c.Uncycled() && !force {
			continue
		}
		c.cycle(generation, previous, force)
	}
	m.log.V(1).Info("cycle", "generation", generation, "force", force)
	return nil
}

func (m *InMemoryManager) GetCache(class string, opts Options) Cache {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.caches[class]; ok {
		c.mu.Lock()
		c.uncycled = opts.Uncycled
		var changed bool
		if opts.TTL > 0 && opts.TTL != c.ttl {
			c.ttl = opts.TTL
			changed = true
		}
		c.mu.Unlock()
		if changed {
			select {
			case c.ttlChanged <- opts.TTL:
			default:
				// an update is already pending
			}
		}
		return c
	}

	ttl := m.ttl
	if opts.TTL > 0 {
		ttl = opts.TTL
	}
	c := &InMemoryCache{
		class:      class,
		generation: m.generation,
		segments:   map[int64]map[string]memoryEntry{},
		site:       m.site,
		stop:       make(chan struct{}),
		ttl:        ttl,
		ttlChanged: make(chan time.Duration, 1),
		uncycled:   opts.Uncycled,
	}
	if !m.closed {
		go c.reaper(ttl)
	}
	m.caches[class] = c
	return c
}
