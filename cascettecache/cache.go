package cascettecache

import "time"

// Tier names a cache backend for metrics labeling.
type Tier string

const (
	TierMemory    Tier = "memory"
	TierDisk      Tier = "disk"
	TierIndexedDB Tier = "indexeddb"
)

// Stats is one tier's point-in-time counters.
type Stats struct {
	Entries   int
	SizeBytes int64
	Hits      uint64
	Misses    uint64
	Evictions uint64
	BytesEvicted uint64
}

// Cache is the operation set every tier implements: a memory-backed tier, an
// on-disk content-addressed store, and an IndexedDB-shaped tier all satisfy
// it, so callers can layer tiers without caring which backend serves a
// given key.
type Cache interface {
	// Get returns the value for key, or ErrKeyNotFound if absent.
	Get(key string) ([]byte, error)
	// Put stores value for key with no expiry.
	Put(key string, value []byte) error
	// PutWithTTL stores value for key, expiring it after ttl.
	PutWithTTL(key string, value []byte, ttl time.Duration) error
	// Remove deletes key, reporting whether it was present.
	Remove(key string) (bool, error)
	// Contains reports whether key is present (and unexpired) without
	// fetching its value.
	Contains(key string) bool
	// Clear removes every entry.
	Clear() error
	// Size returns the number of entries currently stored.
	Size() int
	// Stats returns the tier's current counters.
	Stats() Stats
}
