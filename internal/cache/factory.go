package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/subseek/subseek/internal/config"
)

// Options configures a Store.
type Options struct {
	Size    int
	TTL     time.Duration
	OnEvict EvictCallback
	Logger  zerolog.Logger

	RedisAddress  string
	RedisPassword string
	RedisDB       int
	// KeyPrefix namespaces redis keys; defaults to "subseek:".
	KeyPrefix string

	// Group labels the cache metrics. An empty group leaves the store uninstrumented.
	Group string
}

// Backend constructs a Store from Options.
type Backend func(opts Options) (Store, error)

var (
	mu       sync.RWMutex
	backends = make(map[string]Backend)
)

// Register makes a backend available under name. It panics on a nil backend
// or a duplicate name.
func Register(name string, b Backend) {
	mu.Lock()
	defer mu.Unlock()

	if b == nil {
		panic("cache: Register backend is nil")
	}
	if _, exists := backends[name]; exists {
		panic(fmt.Sprintf("cache: backend %q already registered", name))
	}
	backends[name] = b
}

// Open creates a Store with the named backend, wrapped with metrics when opts.Group is set.
func Open(name string, opts Options) (Store, error) {
	mu.RLock()
	b, ok := backends[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("cache: unknown backend %q (registered: %v)", name, Backends())
	}
	if opts.Size <= 0 {
		return nil, fmt.Errorf("cache: size must be positive, got %d", opts.Size)
	}

	if opts.Group == "" {
		return b(opts)
	}

	group := opts.Group
	onEvict := opts.OnEvict
	opts.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if onEvict != nil {
			onEvict(key, value)
		}
	}

	inner, err := b(opts)
	if err != nil {
		return nil, err
	}
	return newInstrumentedStore(inner, group), nil
}

// OpenFromConfig opens the backend named by cache.provider with the "tracks" metrics group.
func OpenFromConfig(cfg *config.Config) (Store, error) {
	return Open(cfg.Cache.Provider, Options{
		Size:          cfg.Cache.Size,
		TTL:           cfg.CacheTTL(),
		Logger:        config.GetLogger(),
		RedisAddress:  cfg.Cache.RedisAddress,
		RedisPassword: cfg.Cache.RedisPassword,
		RedisDB:       cfg.Cache.RedisDB,
		Group:         "tracks",
	})
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
