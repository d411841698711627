// Package cascettecache implements the multi-tier content cache: an
// in-memory tier (bigcache), an on-disk content-addressed store mirroring the
// CDN's own directory layout, an IndexedDB-shaped tier (stubbed in-process,
// since no browser runtime exists outside WASM builds), a size-classed
// buffer pool, a zero-copy entry type, and resumable-download bookkeeping.
package cascettecache

import "fmt"

// Sentinel errors shared by every cache tier.
var (
	// ErrKeyNotFound is returned by Get when no entry exists for the key.
	ErrKeyNotFound = fmt.Errorf("cascettecache: key not found")

	// ErrEntryExpired is returned when a tier finds an entry but its TTL
	// has elapsed; the entry is also evicted.
	ErrEntryExpired = fmt.Errorf("cascettecache: entry expired")

	// ErrCapacityExceeded is returned when a Put cannot make room for a
	// new entry within the tier's size limit.
	ErrCapacityExceeded = fmt.Errorf("cascettecache: capacity exceeded")

	// ErrCorruption is returned when a stored entry cannot be decoded: the
	// memory tier returns it for a value shorter than its 8-byte expiry
	// prefix. The disk tier does not check content against its hash.
	ErrCorruption = fmt.Errorf("cascettecache: cache corruption detected")

	// ErrInvalidConfiguration is returned by tier constructors for an
	// unusable configuration.
	ErrInvalidConfiguration = fmt.Errorf("cascettecache: invalid configuration")

	// ErrNotResumable is returned by LoadDownloadProgress when no sidecar
	// progress file exists at the given path.
	ErrNotResumable = fmt.Errorf("cascettecache: no resumable download state")

	// ErrUnexpectedStatus is returned when a resumed download's response
	// is not a 206 Partial Content.
	ErrUnexpectedStatus = fmt.Errorf("cascettecache: resume request did not return partial content")
)
