package httprange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClient() *HTTPClient {
	cfg := DefaultConfig()
	cfg.MaxRetries = 3
	cfg.InitialBackoff = time.Millisecond
	return NewHTTPClient(cfg)
}

func TestGetRangePartialContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "bytes=2-5", r.Header.Get("Range"))
		w.Header().Set("Content-Range", "bytes 2-5/10")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte("cdef"))
	}))
	defer srv.Close()

	c := testClient()
	body, err := c.GetRange(context.Background(), srv.URL, &ByteRange{Start: 2, End: 5})
	require.NoError(t, err)
	require.Equal(t, []byte("cdef"), body)
}

func TestGetRangeServerIgnoresRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("full body"))
	}))
	defer srv.Close()

	c := testClient()
	body, err := c.GetRange(context.Background(), srv.URL, &ByteRange{Start: 0, End: 3})
	require.NoError(t, err)
	require.Equal(t, []byte("full body"), body)
}

func TestGetRangeShortBodyIsLogicalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte("ab"))
	}))
	defer srv.Close()

	c := testClient()
	_, err := c.GetRange(context.Background(), srv.URL, &ByteRange{Start: 0, End: 9})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrShortBody)
}

func TestGetRangeRetriesOn5xxThenSucceeds(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := testClient()
	body, err := c.GetRange(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	require.Equal(t, []byte("ok"), body)
	require.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestGetRangePermanentErrorNoRetry(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient()
	_, err := c.GetRange(context.Background(), srv.URL, nil)
	require.Error(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestGetContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1234")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient()
	n, err := c.GetContentLength(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, int64(1234), n)
}

func TestGetContentLengthMissingHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient()
	_, err := c.GetContentLength(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrMissingContentLength)
}

func TestSupportsRanges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-Ranges", "bytes")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient()
	ok, err := c.SupportsRanges(context.Background(), srv.URL)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestParseRetryAfterSeconds(t *testing.T) {
	require.Equal(t, 30*time.Second, parseRetryAfter("30"))
}

func TestParseRetryAfterEmpty(t *testing.T) {
	require.Equal(t, time.Duration(0), parseRetryAfter(""))
}

func TestClassifyStatus(t *testing.T) {
	require.Equal(t, ClassRetryable, classifyStatus(429))
	require.Equal(t, ClassRetryable, classifyStatus(503))
	require.Equal(t, ClassPermanent, classifyStatus(404))
}

func TestIsRetryable(t *testing.T) {
	require.True(t, IsRetryable(&Error{Class: ClassRetryable, Err: context.DeadlineExceeded}))
	require.False(t, IsRetryable(&Error{Class: ClassPermanent, Err: context.DeadlineExceeded}))
}
