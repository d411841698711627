package cascettecache

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/wowemulation-dev/cascette-go/cascettemetrics"
)

// MemoryCache is the in-memory tier, backed by allegro/bigcache/v3.
// Eviction is bigcache's own: the oldest-inserted entries go first once the
// life window passes or the size cap is reached; a Get does not refresh an
// entry, so this is not a least-recently-used order.
// bigcache itself only supports one global expiry window, so per-entry TTLs
// from PutWithTTL are tracked by prefixing each stored value with its
// absolute expiry in Unix nanoseconds (0 = never) and checking it lazily on
// Get, mirroring the IndexedDB tier's lazy-expiration behavior.
type MemoryCache struct {
	cache   *bigcache.BigCache
	metrics *cascettemetrics.Cache
}

// NewMemoryCache creates a MemoryCache. lifeWindow bounds how long bigcache
// retains an entry regardless of PutWithTTL (bigcache's own eviction
// window); maxSizeMB caps total memory use.
func NewMemoryCache(ctx context.Context, lifeWindow time.Duration, maxSizeMB int, metrics *cascettemetrics.Cache) (*MemoryCache, error) {
	conf := bigcache.DefaultConfig(lifeWindow)
	conf.HardMaxCacheSize = maxSizeMB
	cache, err := bigcache.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{cache: cache, metrics: metrics}, nil
}

func encodeEntry(expiresAtUnix int64, value []byte) []byte {
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(expiresAtUnix))
	copy(buf[8:], value)
	return buf
}

func decodeEntry(raw []byte) (expiresAtUnix int64, value []byte, ok bool) {
	if len(raw) < 8 {
		return 0, nil, false
	}
	return int64(binary.BigEndian.Uint64(raw[:8])), raw[8:], true
}

// Get implements Cache.
func (c *MemoryCache) Get(key string) ([]byte, error) {
	raw, err := c.cache.Get(key)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			c.metrics.Misses.WithLabelValues(string(TierMemory)).Inc()
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	expiresAt, value, ok := decodeEntry(raw)
	if !ok {
		return nil, ErrCorruption
	}
	if expiresAt != 0 && time.Now().UnixNano() > expiresAt {
		_ = c.cache.Delete(key)
		c.metrics.Misses.WithLabelValues(string(TierMemory)).Inc()
		return nil, ErrEntryExpired
	}
	c.metrics.Hits.WithLabelValues(string(TierMemory)).Inc()
	return value, nil
}

// Put implements Cache, storing value with no expiry.
func (c *MemoryCache) Put(key string, value []byte) error {
	return c.PutWithTTL(key, value, 0)
}

// PutWithTTL implements Cache.
func (c *MemoryCache) PutWithTTL(key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	if err := c.cache.Set(key, encodeEntry(expiresAt, value)); err != nil {
		return err
	}
	c.metrics.SizeBytes.WithLabelValues(string(TierMemory)).Set(float64(c.cache.Capacity()))
	return nil
}

// Remove implements Cache.
func (c *MemoryCache) Remove(key string) (bool, error) {
	if err := c.cache.Delete(key); err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return false, nil
		}
		return false, err
	}
	c.metrics.Evictions.WithLabelValues(string(TierMemory)).Inc()
	return true, nil
}

// Contains implements Cache.
func (c *MemoryCache) Contains(key string) bool {
	_, err := c.Get(key)
	return err == nil
}

// Clear implements Cache.
func (c *MemoryCache) Clear() error {
	return c.cache.Reset()
}

// Size implements Cache.
func (c *MemoryCache) Size() int {
	return c.cache.Len()
}

// Stats implements Cache.
func (c *MemoryCache) Stats() Stats {
	s := c.cache.Stats()
	return Stats{
		Entries:   c.cache.Len(),
		SizeBytes: int64(c.cache.Capacity()),
		Hits:      uint64(s.Hits),
		Misses:    uint64(s.Misses),
		Evictions: uint64(s.DelHits),
	}
}
