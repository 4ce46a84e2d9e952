package cache

import (
	"context"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/valkey-io/valkey-go"
)

const DefaultTTL = 24 * time.Hour

// Hit is the outcome of a lookup. Stale hits come from the previous generation and
// should be served while a fresh value is produced.
type Hit struct {
	Found bool
	Stale bool
	Value string
}

type Cache interface {
	Class() string
	Delete(ctx context.Context, key string) error
	Generation() int64
	Get(ctx context.Context, key string) (Hit, error)
	Set(ctx context.Context, key string, value string) error
	Site() string
	TTL() time.Duration
	Uncycled() bool
}

type Options struct {
	TTL      time.Duration
	Uncycled bool
}

// Manager hands out caches per class and moves all of them to a new generation
// together. The previous generation stays readable until the next cycle unless the
// cycle is forced.
type Manager interface {
	Close()
	Cycle(generation int64, force bool) error
	GetCache(class string, opts Options) Cache
}

// NewManager returns a valkey backed manager when addr is set, an in-memory one
// otherwise. Keys are scoped by site.
func NewManager(addr, site string, ttl time.Duration, log logr.Logger) (Manager, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if addr == "" {
		log.V(1).Info("using in-memory cache")
		return &InMemoryManager{
			caches: map[string]*InMemoryCache{},
			log:    log,
			site:   site,
			ttl:    ttl,
		}, nil
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		DisableCache: strings.Contains(addr, "127.0.0.1") || strings.Contains(addr, "localhost"),
		InitAddress:  []string{addr},
	})
	if err != nil {
		return nil, err
	}
	log.V(1).Info("using valkey cache", "addr", addr)
	return &ValkeyManager{
		caches: map[string]*ValkeyCache{},
		client: client,
		log:    log,
		site:   site,
		ttl:    ttl,
	}, nil
}
