package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/subseek/subseek/internal/config"
)

func TestOpen_Memory(t *testing.T) {
	t.Parallel()
	s, err := Open("memory", Options{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	s.Set(ctx, "k", []byte("v"))
	got, ok := s.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Errorf("Expected (v, true), got (%q, %v)", got, ok)
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		backend string
		opts    Options
		wantErr string
	}{
		{"unknown backend", "memcached", Options{Size: 1}, "unknown backend"},
		{"zero size", "memory", Options{}, "size must be positive"},
		{"unreachable redis", "redis", Options{Size: 1, RedisAddress: "127.0.0.1:1"}, "redis ping failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Open(tt.backend, tt.opts)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBackends(t *testing.T) {
	t.Parallel()
	names := Backends()
	if len(names) < 2 || names[0] != "memory" || names[1] != "redis" {
		t.Errorf("Expected sorted [memory redis], got %v", names)
	}
}

func TestRegister_Panics(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		backend Backend
	}{
		{"duplicate", newMemoryStore},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			defer func() {
				if recover() == nil {
					t.Error("Expected Register to panic")
				}
			}()
			name := "memory"
			if tt.backend == nil {
				name = "nil-backend"
			}
			Register(name, tt.backend)
		})
	}
}

func TestOpenFromConfig(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Cache.Provider = "memory"
	cfg.Cache.Size = 4
	cfg.Cache.TTL = "1m"

	s, err := OpenFromConfig(cfg)
	if err != nil {
		t.Fatalf("OpenFromConfig: %v", err)
	}
	defer s.Close()

	if _, ok := s.(*instrumentedStore); !ok {
		t.Errorf("Expected an instrumented store, got %T", s)
	}
}
