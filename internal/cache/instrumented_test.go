package cache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(cv *prometheus.CounterVec, label string) float64 {
	c, err := cv.GetMetricWithLabelValues(label)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func openInstrumented(t *testing.T, group string, size int) Store {
	t.Helper()
	s, err := Open("memory", Options{Size: size, TTL: time.Hour, Group: group})
	if err != nil {
		t.Fatalf("Open instrumented: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInstrumentedStore_Counters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openInstrumented(t, "test-counters", 1)

	hits := counterValue(HitsTotal, "test-counters")
	misses := counterValue(MissesTotal, "test-counters")
	evictions := counterValue(EvictionsTotal, "test-counters")

	s.Set(ctx, "a", []byte("1"))
	_, _ = s.Get(ctx, "a")
	_, _ = s.Get(ctx, "missing")
	s.Set(ctx, "b", []byte("2")) // evicts a

	tests := []struct {
		name   string
		metric *prometheus.CounterVec
		before float64
	}{
		{"hits", HitsTotal, hits},
		{"misses", MissesTotal, misses},
		{"evictions", EvictionsTotal, evictions},
	}
	for _, tt := range tests {
		if got := counterValue(tt.metric, "test-counters"); got != tt.before+1 {
			t.Errorf("%s: expected +1, got %+.0f", tt.name, got-tt.before)
		}
	}
}

func TestInstrumentedStore_EntriesGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	previous := collectorRegisterer
	collectorRegisterer = reg
	t.Cleanup(func() { collectorRegisterer = previous })

	ctx := context.Background()
	s, err := Open("memory", Options{Size: 10, TTL: time.Hour, Group: "test-entries"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Set(ctx, "a", []byte("1"))
	s.Set(ctx, "b", []byte("2"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var got float64
	for _, mf := range families {
		if mf.GetName() == "subtitle_cache_entries" {
			got = mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	if got != 2 {
		t.Errorf("Expected entries gauge 2, got %.0f", got)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	families, _ = reg.Gather()
	for _, mf := range families {
		if mf.GetName() == "subtitle_cache_entries" {
			t.Error("Expected the entries gauge to be unregistered on Close")
		}
	}
}
