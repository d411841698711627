package cascettecache

import (
	"sync"
	"time"

	"github.com/wowemulation-dev/cascette-go/cascettemetrics"
)

type indexedDBEntry struct {
	value     []byte
	createdAt time.Time
	expiresAt time.Time // zero value means "never expires"
	size      int64
}

// IndexedDBTier mirrors the browser IndexedDB cache tier's observable
// behavior in-process: an object store keyed by string, lazy expiration
// checked on read, and eviction by creation timestamp (not last-access) when
// the summed entry size exceeds maxSizeBytes. This in-process form exists
// because no browser runtime is available outside a WASM build; callers
// targeting a real browser would instead drive the JS IndexedDB API, but the
// eviction/expiry semantics implemented here match it exactly so that
// higher-level cache logic behaves identically on both targets.
type IndexedDBTier struct {
	mu           sync.Mutex
	entries      map[string]*indexedDBEntry
	totalSize    int64
	maxSizeBytes int64
	metrics      *cascettemetrics.Cache

	hits      uint64
	misses    uint64
	evictions uint64
}

// NewIndexedDBTier creates an IndexedDBTier capped at maxSizeBytes of summed
// entry size.
func NewIndexedDBTier(maxSizeBytes int64, metrics *cascettemetrics.Cache) *IndexedDBTier {
	return &IndexedDBTier{
		entries:      make(map[string]*indexedDBEntry),
		maxSizeBytes: maxSizeBytes,
		metrics:      metrics,
	}
}

// Get implements Cache.
func (t *IndexedDBTier) Get(key string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		t.misses++
		t.metrics.Misses.WithLabelValues(string(TierIndexedDB)).Inc()
		return nil, ErrKeyNotFound
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		t.removeLocked(key)
		t.misses++
		t.metrics.Misses.WithLabelValues(string(TierIndexedDB)).Inc()
		return nil, ErrEntryExpired
	}
	t.hits++
	t.metrics.Hits.WithLabelValues(string(TierIndexedDB)).Inc()
	return e.value, nil
}

// Put implements Cache, storing value with no expiry.
func (t *IndexedDBTier) Put(key string, value []byte) error {
	return t.PutWithTTL(key, value, 0)
}

// PutWithTTL implements Cache.
func (t *IndexedDBTier) PutWithTTL(key string, value []byte, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := int64(len(value))
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if old, ok := t.entries[key]; ok {
		t.totalSize -= old.size
	}

	for t.totalSize+size > t.maxSizeBytes && len(t.entries) > 0 {
		t.evictOldestLocked()
	}

	t.entries[key] = &indexedDBEntry{value: value, createdAt: time.Now(), expiresAt: expiresAt, size: size}
	t.totalSize += size
	t.metrics.SizeBytes.WithLabelValues(string(TierIndexedDB)).Set(float64(t.totalSize))
	return nil
}

// evictOldestLocked removes the entry with the smallest createdAt, matching
// IndexedDB's source behavior of creation-timestamp LRU rather than
// last-access tracking.
func (t *IndexedDBTier) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time
	first := true
	for k, e := range t.entries {
		if first || e.createdAt.Before(oldestTime) {
			oldestKey = k
			oldestTime = e.createdAt
			first = false
		}
	}
	if !first {
		t.removeLocked(oldestKey)
		t.evictions++
		t.metrics.Evictions.WithLabelValues(string(TierIndexedDB)).Inc()
	}
}

func (t *IndexedDBTier) removeLocked(key string) {
	if e, ok := t.entries[key]; ok {
		t.totalSize -= e.size
		delete(t.entries, key)
	}
}

// Remove implements Cache.
func (t *IndexedDBTier) Remove(key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[key]; !ok {
		return false, nil
	}
	t.removeLocked(key)
	return true, nil
}

// Contains implements Cache.
func (t *IndexedDBTier) Contains(key string) bool {
	_, err := t.Get(key)
	return err == nil
}

// Clear implements Cache.
func (t *IndexedDBTier) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]*indexedDBEntry)
	t.totalSize = 0
	return nil
}

// Size implements Cache.
func (t *IndexedDBTier) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Stats implements Cache.
func (t *IndexedDBTier) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		Entries:   len(t.entries),
		SizeBytes: t.totalSize,
		Hits:      t.hits,
		Misses:    t.misses,
		Evictions: t.evictions,
	}
}
