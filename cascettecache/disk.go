package cascettecache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/wowemulation-dev/cascette-go/cascettemetrics"
)

// DiskCache is the on-disk content-addressed tier, mirroring the CDN's own
// layout: {root}/{cdnPath}/{contentType}/{hash[0:2]}/{hash[2:4]}/{hash}.
// Content is immutable by hash; writes go to a temp file in the same
// directory and are renamed into place atomically.
type DiskCache struct {
	root        string
	cdnPath     string
	contentType string
	metrics     *cascettemetrics.Cache

	entries atomic.Int64
	hits    atomic.Uint64
	misses  atomic.Uint64
	evicted atomic.Uint64
}

// NewDiskCache creates a DiskCache rooted at root, storing entries under
// {root}/{cdnPath}/{contentType}/...
func NewDiskCache(root, cdnPath, contentType string, metrics *cascettemetrics.Cache) *DiskCache {
	return &DiskCache{root: root, cdnPath: cdnPath, contentType: contentType, metrics: metrics}
}

func (c *DiskCache) pathFor(key string) string {
	if len(key) < 4 {
		key = key + "0000"[:4-len(key)]
	}
	return filepath.Join(c.root, c.cdnPath, c.contentType, key[0:2], key[2:4], key)
}

// Get implements Cache. The returned bytes are a full read of the file;
// large-content callers needing a streaming handle use OpenReader instead.
func (c *DiskCache) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			c.misses.Add(1)
			c.metrics.Misses.WithLabelValues(string(TierDisk)).Inc()
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	c.hits.Add(1)
	c.metrics.Hits.WithLabelValues(string(TierDisk)).Inc()
	return data, nil
}

// OpenReader opens key's content for streaming, for large entries callers
// don't want fully buffered.
func (c *DiskCache) OpenReader(key string) (io.ReadCloser, error) {
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return f, nil
}

// Put implements Cache: value is written to a temp file beside the final
// path and renamed into place, so readers never observe a partial write.
func (c *DiskCache) Put(key string, value []byte) error {
	return c.PutWithTTL(key, value, 0)
}

// PutWithTTL implements Cache. The disk tier has no native per-entry TTL;
// ttl is accepted for interface compatibility but ignored, since content is
// hash-addressed and immutable — a key's bytes never change once written.
func (c *DiskCache) PutWithTTL(key string, value []byte, _ time.Duration) error {
	path := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cascettecache: create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("cascettecache: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("cascettecache: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("cascettecache: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("cascettecache: rename into place: %w", err)
	}

	c.entries.Add(1)
	c.metrics.SizeBytes.WithLabelValues(string(TierDisk)).Add(float64(len(value)))
	return nil
}

// bufferedReadCloser pairs a bufio.Reader with the underlying file so
// Close still reaches the real descriptor.
type bufferedReadCloser struct {
	*bufio.Reader
	closer io.Closer
}

func (b *bufferedReadCloser) Close() error { return b.closer.Close() }

// OpenReaderBuffered is OpenReader wrapped in a bufio.Reader of bufferSize,
// for callers streaming large cached entries in fixed-size reads rather
// than one syscall per Read call.
func (c *DiskCache) OpenReaderBuffered(key string, bufferSize int) (io.ReadCloser, error) {
	f, err := c.OpenReader(key)
	if err != nil {
		return nil, err
	}
	return &bufferedReadCloser{Reader: bufio.NewReaderSize(f, bufferSize), closer: f}, nil
}

// Remove implements Cache.
func (c *DiskCache) Remove(key string) (bool, error) {
	err := os.Remove(c.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	c.evicted.Add(1)
	c.metrics.Evictions.WithLabelValues(string(TierDisk)).Inc()
	return true, nil
}

// Contains implements Cache.
func (c *DiskCache) Contains(key string) bool {
	_, err := os.Stat(c.pathFor(key))
	return err == nil
}

// Clear implements Cache: removes this tier's own
// {root}/{cdnPath}/{contentType} directory and everything under it.
func (c *DiskCache) Clear() error {
	return os.RemoveAll(filepath.Join(c.root, c.cdnPath, c.contentType))
}

// Size implements Cache. Disk tiers don't track an in-memory entry count;
// Size returns the running total of successful Put calls this process has
// made, not a directory walk.
func (c *DiskCache) Size() int {
	return int(c.entries.Load())
}

// Stats implements Cache.
func (c *DiskCache) Stats() Stats {
	return Stats{
		Entries:   int(c.entries.Load()),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evicted.Load(),
	}
}
