package archiveindex

import (
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/wowemulation-dev/cascette-go/keys"
)

// DefaultLookupCacheTTL bounds how long a resolved Location is trusted
// before a fresh bucket lookup is required, in case an archive is
// reorganized underneath a long-lived Resolver.
const DefaultLookupCacheTTL = 10 * time.Minute

// BucketIndex is satisfied by both Index and GroupIndex: anything that can
// resolve a truncated EncodingKey to a Location within one bucket shard.
type BucketIndex interface {
	Bucket() uint8
	Lookup(keys.TruncatedEncodingKey) (Location, bool)
}

// Resolver aggregates per-bucket indices and dispatches lookups to the
// bucket a key's full EncodingKey hashes to, falling back to a linear scan
// of every bucket when the direct lookup misses (for tools that mis-shard).
//
// An optional bounded, TTL-expiring LRU cache of recent lookups (touched on
// every hit) speeds up repeated resolution of the same keys.
type Resolver struct {
	mu      sync.RWMutex
	buckets map[uint8]BucketIndex

	cache *ttlcache.Cache[keys.EncodingKey, Location]
}

// NewResolver creates an empty Resolver. cacheCapacity <= 0 disables the
// lookup cache; otherwise entries are evicted least-recently-used once the
// cache holds cacheCapacity entries, or after DefaultLookupCacheTTL,
// whichever comes first.
func NewResolver(cacheCapacity int) *Resolver {
	r := &Resolver{buckets: make(map[uint8]BucketIndex)}
	if cacheCapacity > 0 {
		r.cache = ttlcache.New[keys.EncodingKey, Location](
			ttlcache.WithCapacity[keys.EncodingKey, Location](uint64(cacheCapacity)),
			ttlcache.WithTTL[keys.EncodingKey, Location](DefaultLookupCacheTTL),
		)
	}
	return r
}

// AddIndex registers idx under its own bucket number. A second index
// registered for the same bucket replaces the first.
func (r *Resolver) AddIndex(idx BucketIndex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buckets[idx.Bucket()] = idx
}

// Lookup resolves ek to its archive Location: first consulting the lookup
// cache, then the bucket Bucket(ek) hashes to, then (on miss) every other
// registered bucket.
func (r *Resolver) Lookup(ek keys.EncodingKey) (Location, bool) {
	if loc, ok := r.cacheGet(ek); ok {
		return loc, true
	}

	tek := ek.Truncate()
	bucket := Bucket(ek)

	r.mu.RLock()
	idx, ok := r.buckets[bucket]
	r.mu.RUnlock()
	if ok {
		if loc, found := idx.Lookup(tek); found {
			r.cachePut(ek, loc)
			return loc, true
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for b, other := range r.buckets {
		if b == bucket {
			continue
		}
		if loc, found := other.Lookup(tek); found {
			r.cachePut(ek, loc)
			return loc, true
		}
	}

	return Location{}, false
}

func (r *Resolver) cacheGet(ek keys.EncodingKey) (Location, bool) {
	if r.cache == nil {
		return Location{}, false
	}
	item := r.cache.Get(ek)
	if item == nil {
		return Location{}, false
	}
	return item.Value(), true
}

func (r *Resolver) cachePut(ek keys.EncodingKey, loc Location) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ek, loc, ttlcache.DefaultTTL)
}

// BucketCount returns the number of distinct buckets currently registered.
func (r *Resolver) BucketCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buckets)
}

// RequireBucket validates that bucket is in range, returning
// ErrBucketRequired/ErrBucketOutOfRange rather than defaulting silently.
func RequireBucket(bucket uint8, known bool) (uint8, error) {
	if !known {
		return 0, ErrBucketRequired
	}
	if bucket >= NumBuckets {
		return 0, fmt.Errorf("%w: %d", ErrBucketOutOfRange, bucket)
	}
	return bucket, nil
}
