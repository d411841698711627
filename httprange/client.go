// Package httprange abstracts ranged HTTP GET/HEAD access to CDN content,
// classifying failures as retryable, permanent, or logical so callers (and
// the cdn package's failover/circuit-breaker layer) can react accordingly.
package httprange

import "context"

// ByteRange is an inclusive byte range, rendered on the wire as
// "bytes=Start-End".
type ByteRange struct {
	Start int64
	End   int64
}

// Client is the abstract ranged-HTTP operation set every CDN transport
// implements: a single real net/http-backed implementation (see
// NewHTTPClient) plus test doubles.
type Client interface {
	// GetRange issues a GET against url. If r is non-nil, a Range header is
	// sent and both 200 (server ignored the range) and 206 responses are
	// accepted. If r is nil, the full body is fetched.
	GetRange(ctx context.Context, url string, r *ByteRange) ([]byte, error)

	// GetContentLength issues a HEAD against url and returns the
	// Content-Length header, failing if absent.
	GetContentLength(ctx context.Context, url string) (int64, error)

	// SupportsRanges issues a HEAD against url and reports whether the
	// server advertises "Accept-Ranges: bytes".
	SupportsRanges(ctx context.Context, url string) (bool, error)
}
