package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryStore)
}

type memoryStore struct {
	lru *lru.LRU[string, []byte]
}

func newMemoryStore(opts Options) (Store, error) {
	var onEvict lru.EvictCallback[string, []byte]
	if opts.OnEvict != nil {
		onEvict = func(key string, value []byte) {
			opts.OnEvict(key, value)
		}
	}
	return &memoryStore{lru: lru.NewLRU(opts.Size, onEvict, opts.TTL)}, nil
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	return m.lru.Get(key)
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte) {
	m.lru.Add(key, value)
}

func (m *memoryStore) Len(context.Context) int {
	return m.lru.Len()
}

func (m *memoryStore) Close() error {
	return nil
}
