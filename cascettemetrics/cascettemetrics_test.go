package cascettemetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewPoolRegistersDistinctCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	pool := NewPool(reg)

	pool.SuccessfulRequests.WithLabelValues("cdn1.example.com").Inc()
	pool.FailedRequests.WithLabelValues("cdn2.example.com").Inc()
	pool.CircuitBreakerState.WithLabelValues("cdn1.example.com").Set(1)
	pool.BytesDownloaded.Add(1024)

	metrics, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, metrics)
}

func TestNewCacheRegistersDistinctCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	cache := NewCache(reg)

	cache.Hits.WithLabelValues("memory").Inc()
	cache.Misses.WithLabelValues("disk").Inc()
	cache.SizeBytes.WithLabelValues("memory").Set(4096)

	metrics, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, metrics)
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()

	require.NotPanics(t, func() {
		NewPool(reg1)
		NewPool(reg2)
	})
}
