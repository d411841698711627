// Package cdn implements CDN bootstrap, content URL construction, and a
// failover connection pool with per-server circuit breaking, on top of the
// httprange abstract range client.
package cdn

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wowemulation-dev/cascette-go/cascettemetrics"
	"github.com/wowemulation-dev/cascette-go/httprange"
)

// Pool is a failover-aware CDN connection pool: it iterates a product's
// bootstrap server list in priority order, tracks a circuit breaker and
// response-time window per host, and retries transient failures using an
// exponential-backoff-with-jitter schedule.
type Pool struct {
	servers     []Server
	bootstrap   Bootstrap
	client      httprange.Client
	retryPolicy RetryPolicy
	breakerCfg  BreakerConfig
	metrics     *cascettemetrics.Pool

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
	windows  map[string]*responseWindow
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithRetryPolicy overrides the default retry/backoff schedule.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(pool *Pool) { pool.retryPolicy = p }
}

// WithBreakerConfig overrides the default circuit breaker thresholds.
func WithBreakerConfig(cfg BreakerConfig) Option {
	return func(pool *Pool) { pool.breakerCfg = cfg }
}

// WithMetrics attaches a Prometheus metric set; without it, metrics are
// simply not recorded.
func WithMetrics(m *cascettemetrics.Pool) Option {
	return func(pool *Pool) { pool.metrics = m }
}

// NewPool builds a Pool from b's server list, sorted by ascending priority
// (lower value tried first) and capped at b.MaxHosts if set.
func NewPool(b Bootstrap, client httprange.Client, opts ...Option) *Pool {
	servers := append([]Server(nil), b.Servers...)
	sort.SliceStable(servers, func(i, j int) bool { return servers[i].Priority < servers[j].Priority })
	if b.MaxHosts > 0 && len(servers) > b.MaxHosts {
		servers = servers[:b.MaxHosts]
	}

	p := &Pool{
		servers:     servers,
		bootstrap:   b,
		client:      client,
		retryPolicy: DefaultRetryPolicy(),
		breakerCfg:  DefaultBreakerConfig(),
		breakers:    make(map[string]*CircuitBreaker),
		windows:     make(map[string]*responseWindow),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchRange fetches hash's byte range (or the whole object if r is nil)
// for contentType, retrying the selected server up to RetryPolicy.MaxRetries
// attempts before failing over to the next eligible one, and
// short-circuiting on permanent errors. A strict server's failure is
// returned immediately, without trying further servers.
func (p *Pool) FetchRange(ctx context.Context, contentType ContentType, hash string, r *httprange.ByteRange) ([]byte, error) {
	if len(p.servers) == 0 {
		return nil, ErrNoServers
	}

	var lastErr error
	serverIdx := 0
	triedAny := false

	for {
		server, breaker, ok := p.nextEligibleServer(&serverIdx)
		if !ok {
			if triedAny {
				return nil, fmt.Errorf("%w: %v", ErrAllServersFailed, lastErr)
			}
			return nil, ErrCircuitOpen
		}
		triedAny = true

		url, err := BuildURL(server, p.bootstrap, contentType, hash)
		if err != nil {
			return nil, err
		}

		maxRetries := p.retryPolicy.MaxRetries
		if maxRetries < 1 {
			maxRetries = 1
		}

		for attempt := 0; attempt < maxRetries; attempt++ {
			body, elapsed, err := p.doFetch(ctx, url, r)
			p.windowFor(server.Host).add(elapsed)
			p.recordResponseTime(server.Host, elapsed)

			if err == nil {
				breaker.RecordSuccess()
				p.recordSuccess(server.Host, breaker, len(body))
				return body, nil
			}

			breaker.RecordFailure()
			lastErr = err
			p.recordFailure(server.Host, breaker)

			if !httprange.IsRetryable(err) {
				return nil, err
			}
			if server.Strict {
				return nil, err
			}

			if attempt == maxRetries-1 {
				break
			}

			if p.metrics != nil {
				p.metrics.RetryAttempts.Inc()
			}

			wait := p.retryPolicy.delay(attempt)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if p.metrics != nil {
			p.metrics.CDNFailovers.Inc()
		}
	}
}

func (p *Pool) doFetch(ctx context.Context, url string, r *httprange.ByteRange) ([]byte, time.Duration, error) {
	if p.metrics != nil {
		p.metrics.ActiveConnections.Inc()
		p.metrics.RangeRequests.Inc()
		defer p.metrics.ActiveConnections.Dec()
	}
	start := time.Now()
	body, err := p.client.GetRange(ctx, url, r)
	return body, time.Since(start), err
}

func (p *Pool) recordResponseTime(host string, elapsed time.Duration) {
	if p.metrics != nil {
		p.metrics.ResponseTime.WithLabelValues(host).Observe(elapsed.Seconds())
	}
}

func (p *Pool) recordSuccess(host string, breaker *CircuitBreaker, bytes int) {
	if p.metrics == nil {
		return
	}
	p.metrics.SuccessfulRequests.WithLabelValues(host).Inc()
	p.metrics.BytesDownloaded.Add(float64(bytes))
	p.metrics.CircuitBreakerState.WithLabelValues(host).Set(breaker.State().metricValue())
}

func (p *Pool) recordFailure(host string, breaker *CircuitBreaker) {
	if p.metrics == nil {
		return
	}
	p.metrics.FailedRequests.WithLabelValues(host).Inc()
	p.metrics.CircuitBreakerState.WithLabelValues(host).Set(breaker.State().metricValue())
}

// nextEligibleServer scans servers starting at *idx for the first one whose
// circuit breaker allows a request, advancing *idx past it. It reports
// false once every server has been examined without finding one.
func (p *Pool) nextEligibleServer(idx *int) (Server, *CircuitBreaker, bool) {
	n := len(p.servers)
	for i := 0; i < n; i++ {
		pos := (*idx + i) % n
		s := p.servers[pos]
		b := p.breakerFor(s.Host)
		if b.Allow() {
			*idx = pos + 1
			return s, b, true
		}
	}
	return Server{}, nil, false
}

func (p *Pool) breakerFor(host string) *CircuitBreaker {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.breakers[host]
	if !ok {
		b = NewCircuitBreaker(p.breakerCfg)
		p.breakers[host] = b
	}
	return b
}

func (p *Pool) windowFor(host string) *responseWindow {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.windows[host]
	if !ok {
		w = &responseWindow{}
		p.windows[host] = w
	}
	return w
}

// AverageResponseTime returns host's rolling average response time over its
// last (up to) 1000 samples.
func (p *Pool) AverageResponseTime(host string) time.Duration {
	return p.windowFor(host).average()
}

// BreakerState returns host's current circuit breaker state.
func (p *Pool) BreakerState(host string) BreakerState {
	return p.breakerFor(host).State()
}
