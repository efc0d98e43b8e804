package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache metrics carry a "cache" label set from Options.Group.
var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_cache_hits_total",
			Help: "Total number of cache hits.",
		},
		[]string{"cache"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_cache_misses_total",
			Help: "Total number of cache misses.",
		},
		[]string{"cache"},
	)

	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_cache_evictions_total",
			Help: "Total number of entries evicted from the cache.",
		},
		[]string{"cache"},
	)
)

func init() {
	prometheus.MustRegister(HitsTotal, MissesTotal, EvictionsTotal)
}

// entriesCollector reports the size of one cache group, read at scrape time
// so backend-side expiry is reflected.
type entriesCollector struct {
	desc    *prometheus.Desc
	lenFunc func() int
}

func (c *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.lenFunc()))
}

var (
	collectorsMu sync.Mutex
	collectors   = make(map[string]*entriesCollector)
	// collectorRegisterer is swapped for an isolated registry in tests.
	collectorRegisterer prometheus.Registerer = prometheus.DefaultRegisterer
)

// registerEntriesCollector installs the entries gauge of group, replacing a previous one.
func registerEntriesCollector(group string, lenFunc func() int) {
	c := &entriesCollector{
		desc: prometheus.NewDesc(
			"subtitle_cache_entries",
			"Current number of entries in the cache.",
			nil,
			prometheus.Labels{"cache": group},
		),
		lenFunc: lenFunc,
	}

	collectorsMu.Lock()
	defer collectorsMu.Unlock()

	if old, ok := collectors[group]; ok {
		collectorRegisterer.Unregister(old)
	}
	collectors[group] = c
	_ = collectorRegisterer.Register(c)
}

func unregisterEntriesCollector(group string) {
	collectorsMu.Lock()
	defer collectorsMu.Unlock()

	if c, ok := collectors[group]; ok {
		collectorRegisterer.Unregister(c)
		delete(collectors, group)
	}
}
