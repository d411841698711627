package httprange

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/klauspost/compress/gzhttp"
	"k8s.io/klog/v2"
)

// Config tunes HTTPClient's transport and retry behavior.
type Config struct {
	// ConnectTimeout bounds dialing+TLS handshake for a new connection.
	ConnectTimeout time.Duration
	// Timeout bounds a single HTTP round trip (the overall request
	// timeout; streaming operations do not reset it between chunks).
	Timeout time.Duration
	// MaxIdleConnsPerHost caps pooled idle connections per CDN host.
	MaxIdleConnsPerHost int
	// IdleConnTimeout is how long an idle pooled connection is kept.
	IdleConnTimeout time.Duration
	// MaxRetries bounds retry attempts for retryable failures.
	MaxRetries uint64
	// InitialBackoff is the first retry delay.
	InitialBackoff time.Duration
	// MaxBackoff caps how large a single retry delay can grow to.
	MaxBackoff time.Duration
	// BackoffMultiplier scales each successive retry delay.
	BackoffMultiplier float64
	// JitterFactor randomizes each retry delay by +/- this fraction.
	JitterFactor float64
	// UserAgent is sent on every request, if non-empty.
	UserAgent string
}

// DefaultConfig matches the teacher transport's pooling defaults, scaled
// down retry counts to suit CDN range fetches rather than bulk downloads.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:      10 * time.Second,
		Timeout:             20 * time.Second,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     time.Minute,
		MaxRetries:          5,
		InitialBackoff:      500 * time.Millisecond,
		MaxBackoff:          30 * time.Second,
		BackoffMultiplier:   2.0,
		JitterFactor:        0.5,
		UserAgent:           "cascette-go",
	}
}

// HTTPClient is the real net/http-backed Client implementation.
type HTTPClient struct {
	client *http.Client
	cfg    Config
}

// NewHTTPClient builds an HTTPClient from cfg, wrapping the transport in
// transparent gzip negotiation the same way the teacher's HTTP client does.
func NewHTTPClient(cfg Config) *HTTPClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		ForceAttemptHTTP2:   true,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		MaxConnsPerHost:     cfg.MaxIdleConnsPerHost,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 180 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: gzhttp.Transport(transport),
		},
		cfg: cfg,
	}
}

func (c *HTTPClient) newBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxInterval = c.cfg.MaxBackoff
	b.Multiplier = c.cfg.BackoffMultiplier
	b.RandomizationFactor = c.cfg.JitterFactor
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, c.cfg.MaxRetries), ctx)
}

func (c *HTTPClient) setCommonHeaders(req *http.Request) {
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
}

// GetRange implements Client.
func (c *HTTPClient) GetRange(ctx context.Context, url string, r *ByteRange) ([]byte, error) {
	var body []byte

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if r != nil {
			req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", r.Start, r.End))
		}
		c.setCommonHeaders(req)

		resp, err := c.client.Do(req)
		if err != nil {
			klog.V(4).Infof("httprange: GET %s failed: %v", url, err)
			return &Error{Class: ClassRetryable, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent {
			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return &Error{Class: ClassRetryable, Err: err}
			}
			if r != nil && resp.StatusCode == http.StatusPartialContent {
				want := r.End - r.Start + 1
				if int64(len(b)) < want {
					return backoff.Permanent(&Error{Class: ClassLogical, Err: ErrShortBody})
				}
			}
			body = b
			return nil
		}

		return c.statusError(resp)
	}

	if err := backoff.Retry(op, c.newBackOff(ctx)); err != nil {
		return nil, fmt.Errorf("httprange: get range %s: %w", url, err)
	}
	return body, nil
}

// GetContentLength implements Client.
func (c *HTTPClient) GetContentLength(ctx context.Context, url string) (int64, error) {
	var length int64

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		c.setCommonHeaders(req)
		resp, err := c.client.Do(req)
		if err != nil {
			return &Error{Class: ClassRetryable, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return c.statusError(resp)
		}

		header := resp.Header.Get("Content-Length")
		if header == "" {
			return backoff.Permanent(&Error{Class: ClassLogical, Err: ErrMissingContentLength})
		}
		n, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			return backoff.Permanent(&Error{Class: ClassLogical, Err: fmt.Errorf("parsing Content-Length %q: %w", header, err)})
		}
		length = n
		return nil
	}

	if err := backoff.Retry(op, c.newBackOff(ctx)); err != nil {
		return 0, fmt.Errorf("httprange: content length %s: %w", url, err)
	}
	return length, nil
}

// SupportsRanges implements Client.
func (c *HTTPClient) SupportsRanges(ctx context.Context, url string) (bool, error) {
	var supports bool

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		c.setCommonHeaders(req)
		resp, err := c.client.Do(req)
		if err != nil {
			return &Error{Class: ClassRetryable, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return c.statusError(resp)
		}
		supports = resp.Header.Get("Accept-Ranges") == "bytes"
		return nil
	}

	if err := backoff.Retry(op, c.newBackOff(ctx)); err != nil {
		return false, fmt.Errorf("httprange: supports ranges %s: %w", url, err)
	}
	return supports, nil
}

func (c *HTTPClient) statusError(resp *http.Response) error {
	class := classifyStatus(resp.StatusCode)
	httpErr := &Error{
		Class:      class,
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("unexpected status %s", resp.Status),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		httpErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}
	if class != ClassRetryable {
		return backoff.Permanent(httpErr)
	}
	return httpErr
}

// parseRetryAfter decodes a Retry-After header, which per RFC 7231 is
// either a number of seconds or an HTTP-date. An unparseable or absent
// value yields zero, leaving the caller's own backoff schedule in effect.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		return time.Until(t)
	}
	return 0
}
