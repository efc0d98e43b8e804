package cache

import "context"

// instrumentedStore counts hits and misses for one group and exposes its size.
type instrumentedStore struct {
	inner Store
	group string
}

func newInstrumentedStore(inner Store, group string) *instrumentedStore {
	registerEntriesCollector(group, func() int {
		ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
		defer cancel()
		return inner.Len(ctx)
	})
	return &instrumentedStore{inner: inner, group: group}
}

func (s *instrumentedStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, ok := s.inner.Get(ctx, key)
	if ok {
		HitsTotal.WithLabelValues(s.group).Inc()
	} else {
		MissesTotal.WithLabelValues(s.group).Inc()
	}
	return val, ok
}

func (s *instrumentedStore) Set(ctx context.Context, key string, value []byte) {
	s.inner.Set(ctx, key, value)
}

func (s *instrumentedStore) Len(ctx context.Context) int {
	return s.inner.Len(ctx)
}

// Close drops the entries gauge before closing the backend.
func (s *instrumentedStore) Close() error {
	unregisterEntriesCollector(s.group)
	return s.inner.Close()
}

