package cache

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis tests need a server: set REDIS_ADDRESS (e.g. "localhost:6379").
func openTestRedis(t *testing.T, size int, ttl time.Duration, onEvict EvictCallback) Store {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("Skipping Redis tests: set REDIS_ADDRESS to enable")
	}

	prefix := fmt.Sprintf("subseek-test:%s:", t.Name())
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		_ = client.Close()
	})

	s, err := Open("redis", Options{
		Size:         size,
		TTL:          ttl,
		RedisAddress: addr,
		RedisDB:      15,
		KeyPrefix:    prefix,
		OnEvict:      onEvict,
	})
	if err != nil {
		t.Fatalf("Open redis: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRedisStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := openTestRedis(t, 10, time.Minute, nil)

	if _, ok := s.Get(ctx, "missing"); ok {
		t.Error("Expected miss for unknown key")
	}
	s.Set(ctx, "k", []byte("v"))
	got, ok := s.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Errorf("Expected (v, true), got (%q, %v)", got, ok)
	}
	if n := s.Len(ctx); n != 1 {
		t.Errorf("Expected 1 entry, got %d", n)
	}
}

func TestRedisStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	var (
		mu      sync.Mutex
		evicted []string
	)
	s := openTestRedis(t, 2, time.Minute, func(key string, _ []byte) {
		mu.Lock()
		evicted = append(evicted, key)
		mu.Unlock()
	})

	s.Set(ctx, "a", []byte("1"))
	time.Sleep(time.Millisecond)
	s.Set(ctx, "b", []byte("2"))
	time.Sleep(time.Millisecond)
	_, _ = s.Get(ctx, "a")
	time.Sleep(time.Millisecond)
	s.Set(ctx, "c", []byte("3"))

	if _, ok := s.Get(ctx, "b"); ok {
		t.Error("Expected b to be evicted")
	}
	if _, ok := s.Get(ctx, "a"); !ok {
		t.Error("Expected a to survive after being touched")
	}
	mu.Lock()
	defer mu.Unlock()
	if fmt.Sprint(evicted) != "[b]" {
		t.Errorf("Expected eviction of b, got %v", evicted)
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := openTestRedis(t, 10, 50*time.Millisecond, nil)

	s.Set(ctx, "k", []byte("v"))
	time.Sleep(150 * time.Millisecond)

	if _, ok := s.Get(ctx, "k"); ok {
		t.Error("Expected entry to expire")
	}
	if n := s.Len(ctx); n != 0 {
		t.Errorf("Expected 0 live entries, got %d", n)
	}
}
