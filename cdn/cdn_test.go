package cdn

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wowemulation-dev/cascette-go/cascettemetrics"
	"github.com/wowemulation-dev/cascette-go/httprange"
)

const testHash = "0123456789abcdef0123456789abcdef"

func TestValidateHash(t *testing.T) {
	require.NoError(t, ValidateHash(testHash))

	err := ValidateHash("too-short")
	assert.ErrorIs(t, err, ErrInvalidHash)

	err = ValidateHash("0123456789ABCDEF0123456789abcdef")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestBuildURLData(t *testing.T) {
	server := Server{Host: "cdn.example.com", SupportsHTTPS: true, Priority: 0}
	b := Bootstrap{CDNPath: "tpr/wow", ConfigPath: "tpr/configs/data"}

	url, err := BuildURL(server, b, Data, testHash)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/tpr/wow/data/01/23/"+testHash, url)
}

func TestBuildURLProductConfigUsesConfigPath(t *testing.T) {
	server := Server{Host: "cdn.example.com", SupportsHTTPS: false, Priority: 0}
	b := Bootstrap{CDNPath: "tpr/wow", ConfigPath: "tpr/configs/data"}

	url, err := BuildURL(server, b, ProductConfig, testHash)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example.com/tpr/configs/data/01/23/"+testHash, url)
}

func TestBuildURLInvalidHash(t *testing.T) {
	_, err := BuildURL(Server{Host: "cdn.example.com"}, Bootstrap{}, Data, "bad")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	b := NewCircuitBreaker(BreakerConfig{FailureThreshold: 3, Cooldown: time.Minute})

	assert.True(t, b.Allow())
	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, BreakerClosed, b.State())
	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.State())
	assert.False(t, b.Allow())
}

func TestCircuitBreakerHalfOpenAfterCooldown(t *testing.T) {
	b := NewCircuitBreaker(BreakerConfig{FailureThreshold: 1, Cooldown: time.Millisecond})
	b.RecordFailure()
	require.Equal(t, BreakerOpen, b.State())

	time.Sleep(5 * time.Millisecond)
	assert.True(t, b.Allow())
	assert.Equal(t, BreakerHalfOpen, b.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	b := NewCircuitBreaker(BreakerConfig{FailureThreshold: 1, Cooldown: time.Millisecond})
	b.RecordFailure()
	time.Sleep(5 * time.Millisecond)
	require.True(t, b.Allow())

	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.State())
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	b := NewCircuitBreaker(BreakerConfig{FailureThreshold: 2, Cooldown: time.Minute})
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.Equal(t, BreakerClosed, b.State())
}

func TestRetryPolicyDelayCapsAtMax(t *testing.T) {
	p := RetryPolicy{Initial: time.Second, Max: 2 * time.Second, Multiplier: 10, Jitter: 0}
	d := p.delay(5)
	assert.Equal(t, 2*time.Second, d)
}

func TestRetryPolicyDelayGrows(t *testing.T) {
	p := RetryPolicy{Initial: 100 * time.Millisecond, Max: 10 * time.Second, Multiplier: 2, Jitter: 0}
	assert.Equal(t, 100*time.Millisecond, p.delay(0))
	assert.Equal(t, 200*time.Millisecond, p.delay(1))
	assert.Equal(t, 400*time.Millisecond, p.delay(2))
}

func TestRetryPolicyJitterStaysInBounds(t *testing.T) {
	p := RetryPolicy{Initial: time.Second, Max: time.Minute, Multiplier: 2, Jitter: 0.1}
	for i := 0; i < 50; i++ {
		d := p.delay(0)
		assert.GreaterOrEqual(t, d, 900*time.Millisecond)
		assert.LessOrEqual(t, d, 1100*time.Millisecond)
	}
}

func TestBackOffStopsAfterMaxRetries(t *testing.T) {
	bo := newBackOff(RetryPolicy{Initial: time.Millisecond, Max: time.Second, Multiplier: 2, MaxRetries: 2})
	require.NotEqual(t, backOffStop(), bo.NextBackOff())
	require.NotEqual(t, backOffStop(), bo.NextBackOff())
	assert.Equal(t, backOffStop(), bo.NextBackOff())
}

func TestResponseWindowAverage(t *testing.T) {
	w := &responseWindow{}
	w.add(10 * time.Millisecond)
	w.add(20 * time.Millisecond)
	w.add(30 * time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, w.average())
}

func TestResponseWindowWrapsAtCapacity(t *testing.T) {
	w := &responseWindow{}
	for i := 0; i < responseWindowSize+10; i++ {
		w.add(time.Millisecond)
	}
	assert.Equal(t, responseWindowSize, w.count)
	assert.Equal(t, time.Millisecond, w.average())
}

// fakeClient is a scripted httprange.Client test double: each call to
// GetRange pops the next scripted response for its URL in sequence.
type fakeClient struct {
	responses map[string][]fakeResponse
	calls     map[string]int
}

type fakeResponse struct {
	body []byte
	err  error
}

func newFakeClient() *fakeClient {
	return &fakeClient{responses: make(map[string][]fakeResponse), calls: make(map[string]int)}
}

func (f *fakeClient) script(host string, resps ...fakeResponse) {
	f.responses[host] = resps
}

func (f *fakeClient) GetRange(_ context.Context, url string, _ *httprange.ByteRange) ([]byte, error) {
	for host, resps := range f.responses {
		if containsHost(url, host) {
			i := f.calls[host]
			if i >= len(resps) {
				i = len(resps) - 1
			}
			f.calls[host]++
			return resps[i].body, resps[i].err
		}
	}
	return nil, httprange.ErrShortBody
}

func containsHost(url, host string) bool {
	for i := 0; i+len(host) <= len(url); i++ {
		if url[i:i+len(host)] == host {
			return true
		}
	}
	return false
}

func (f *fakeClient) GetContentLength(context.Context, string) (int64, error) { return 0, nil }
func (f *fakeClient) SupportsRanges(context.Context, string) (bool, error)    { return true, nil }

func testBootstrap(hosts ...string) Bootstrap {
	servers := make([]Server, len(hosts))
	for i, h := range hosts {
		servers[i] = Server{Host: h, SupportsHTTPS: true, Priority: i}
	}
	return Bootstrap{Servers: servers, CDNPath: "tpr/wow", ConfigPath: "tpr/configs/data"}
}

func TestPoolFetchRangeSucceedsOnFirstServer(t *testing.T) {
	fc := newFakeClient()
	fc.script("a.example.com", fakeResponse{body: []byte("hello")})

	p := NewPool(testBootstrap("a.example.com", "b.example.com"), fc)
	body, err := p.FetchRange(context.Background(), Data, testHash, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), body)
}

func TestPoolFetchRangeFailsOverOnRetryableError(t *testing.T) {
	fc := newFakeClient()
	retryErr := &httprange.Error{Class: httprange.ClassRetryable, StatusCode: 503, Err: ErrAllServersFailed}
	fc.script("a.example.com", fakeResponse{err: retryErr})
	fc.script("b.example.com", fakeResponse{body: []byte("ok")})

	p := NewPool(testBootstrap("a.example.com", "b.example.com"), fc,
		WithRetryPolicy(RetryPolicy{Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 1, MaxRetries: 3}))
	body, err := p.FetchRange(context.Background(), Data, testHash, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), body)
}

func TestPoolFetchRangeRetriesSameHostBeforeFailover(t *testing.T) {
	// S7: H1 returns 503 once then 500 twice (exhausting retries); H2
	// returns 200. Expect 3 attempts on H1, then exactly 1 on H2.
	fc := newFakeClient()
	err503 := &httprange.Error{Class: httprange.ClassRetryable, StatusCode: 503, Err: ErrAllServersFailed}
	err500 := &httprange.Error{Class: httprange.ClassRetryable, StatusCode: 500, Err: ErrAllServersFailed}
	fc.script("a.example.com", fakeResponse{err: err503}, fakeResponse{err: err500}, fakeResponse{err: err500})
	fc.script("b.example.com", fakeResponse{body: []byte("ok")})

	m := cascettemetrics.NewPool(prometheus.NewRegistry())
	p := NewPool(testBootstrap("a.example.com", "b.example.com"), fc,
		WithRetryPolicy(RetryPolicy{Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 1, MaxRetries: 3}),
		WithMetrics(m))

	body, err := p.FetchRange(context.Background(), Data, testHash, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), body)
	assert.Equal(t, 3, fc.calls["a.example.com"])
	assert.Equal(t, 1, fc.calls["b.example.com"])
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CDNFailovers))
}

func TestPoolFetchRangeShortCircuitsOnPermanentError(t *testing.T) {
	fc := newFakeClient()
	permErr := &httprange.Error{Class: httprange.ClassPermanent, StatusCode: 404, Err: ErrAllServersFailed}
	fc.script("a.example.com", fakeResponse{err: permErr})
	fc.script("b.example.com", fakeResponse{body: []byte("should not be reached")})

	p := NewPool(testBootstrap("a.example.com", "b.example.com"), fc)
	_, err := p.FetchRange(context.Background(), Data, testHash, nil)
	assert.ErrorIs(t, err, permErr.Err)
	assert.Equal(t, 0, fc.calls["b.example.com"])
}

func TestPoolFetchRangeStrictServerSuppressesFallback(t *testing.T) {
	fc := newFakeClient()
	retryErr := &httprange.Error{Class: httprange.ClassRetryable, StatusCode: 503, Err: ErrAllServersFailed}
	fc.script("a.example.com", fakeResponse{err: retryErr})
	fc.script("b.example.com", fakeResponse{body: []byte("should not be reached")})

	b := testBootstrap("a.example.com", "b.example.com")
	b.Servers[0].Strict = true

	p := NewPool(b, fc)
	_, err := p.FetchRange(context.Background(), Data, testHash, nil)
	assert.ErrorIs(t, err, retryErr)
	assert.Equal(t, 0, fc.calls["b.example.com"])
}

func TestPoolFetchRangeNoServers(t *testing.T) {
	p := NewPool(Bootstrap{}, newFakeClient())
	_, err := p.FetchRange(context.Background(), Data, testHash, nil)
	assert.ErrorIs(t, err, ErrNoServers)
}

func TestPoolFetchRangeAllCircuitsOpen(t *testing.T) {
	fc := newFakeClient()
	p := NewPool(testBootstrap("a.example.com"), fc,
		WithBreakerConfig(BreakerConfig{FailureThreshold: 1, Cooldown: time.Hour}))

	p.breakerFor("a.example.com").RecordFailure()
	_, err := p.FetchRange(context.Background(), Data, testHash, nil)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func backOffStop() time.Duration { return -1 }
