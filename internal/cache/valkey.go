package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/valkey-io/valkey-go"
)

type ValkeyCache struct {
	class      string
	client     valkey.Client
	generation int64
	log        logr.Logger
	mu         sync.RWMutex
	prefix     string // "{site:class:generation}:"
	prevPrefix string
	site       string
	ttl        time.Duration
	uncycled   bool
}

var _ Cache = (*ValkeyCache)(nil)

func (s *ValkeyCache) Class() string {
	return s.class
}

func (s *ValkeyCache) Delete(ctx context.Context, key string) error {
	s.mu.RLock()
	keys := []string{s.prefix + key}
	if s.prevPrefix != "" {
		keys = append(keys, s.prevPrefix+key)
	}
	s.mu.RUnlock()

	return s.client.Do(ctx, s.client.B().Del().Key(keys...).Build()).Error()
}

func (s *ValkeyCache) Generation() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *ValkeyCache) Site() string {
	return s.site
}

func (s *ValkeyCache) TTL() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ttl
}

func (s *ValkeyCache) Uncycled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uncycled
}

func (s *ValkeyCache) Get(ctx context.Context, key string) (Hit, error) {
	s.mu.RLock()
	curr := s.prefix
	prev := s.prevPrefix
	s.mu.RUnlock()

	val, found, err := s.getValue(ctx, curr+key)
	if err != nil {
		return Hit{}, err
	}
	if found {
		return Hit{Found: true, Value: val}, nil
	}

	if prev != "" {
		val, found, err := s.getValue(ctx, prev+key)
		if err != nil {
			return Hit{}, err
		}
		if found {
			return Hit{Found: true, Stale: true, Value: val}, nil
		}
	}

	return Hit{}, nil
}

func (s *ValkeyCache) Set(ctx context.Context, key string, value string) error {
	s.mu.RLock()
	prefix := s.prefix
	ttl := s.ttl
	s.mu.RUnlock()

	s.log.V(1).Info("set", "key", prefix+key, "ttl", ttl)
	return s.client.Do(ctx, s.client.B().Set().Key(prefix+key).Value(value).Px(ttl).Build()).Error()
}

func (s *ValkeyCache) getValue(ctx context.Context, fullKey string) (string, bool, error) {
	val, err := s.client.Do(ctx, s.client.B().Get().Key(fullKey).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

type ValkeyManager struct {
	caches     map[string]*ValkeyCache
	client     valkey.Client
	generation int64
	log        logr.Logger
	mu         sync.RWMutex
	site       string
	ttl        time.Duration
}

var _ Manager = (*ValkeyManager)(nil)

func (m *ValkeyManager) Close() {
	m.client.Close()
}

func (m *ValkeyManager) Cycle(generation int64, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation = generation

	for _, c := range m.caches {
		c.mu.Lock()
		if c.uncycled && !force {
			c.mu.Unlock()
			continue
		}
		if force {
			c.prevPrefix = ""
		} else {
			c.prevPrefix = c.prefix
		}
		c.generation = generation
		c.prefix = m.prefix(c.class, generation)
		c.mu.Unlock()
	}
	m.log.V(1).Info("cycle", "generation", generation, "force", force)
	return nil
}

func (m *ValkeyManager) GetCache(class string, opts Options) Cache {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.caches[class]; ok {
		c.mu.Lock()
		c.uncycled = opts.Uncycled
		if opts.TTL > 0 {
			c.ttl = opts.TTL
		}
		c.mu.Unlock()
		return c
	}

	ttl := m.ttl
	if opts.TTL > 0 {
		ttl = opts.TTL
	}
	c := &ValkeyCache{
		class:      class,
		client:     m.client,
		generation: m.generation,
		log:        m.log.WithValues("class", class),
		prefix:     m.prefix(class, m.generation),
		site:       m.site,
		ttl:        ttl,
		uncycled:   opts.Uncycled,
	}
	m.caches[class] = c
	return c
}

func (m *ValkeyManager) prefix(class string, generation int64) string {
	return fmt.Sprintf("{%s:%s:%d}:", m.site, class, generation)
}
