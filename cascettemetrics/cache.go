package cascettemetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache is the multi-tier cache's metric set, shared by the memory, disk,
// and IndexedDB-shaped tiers via a "tier" label.
type Cache struct {
	Hits      *prometheus.CounterVec
	Misses    *prometheus.CounterVec
	SizeBytes *prometheus.GaugeVec
	Evictions *prometheus.CounterVec
}

// NewCache registers a Cache's collectors against reg.
func NewCache(reg prometheus.Registerer) *Cache {
	f := promauto.With(reg)
	return &Cache{
		Hits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cache hits by tier.",
		}, []string{"tier"}),
		Misses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cache misses by tier.",
		}, []string{"tier"}),
		SizeBytes: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cache_size_bytes",
			Help: "Current cache size in bytes by tier.",
		}, []string{"tier"}),
		Evictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Cache evictions by tier.",
		}, []string{"tier"}),
	}
}
