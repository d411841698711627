// Package cascetteconfig collects the recognized configuration surface for
// every other package into one aggregate Config, with defaults matching
// spec.md and an environment-variable override for the cache directory and
// log verbosity, read the same way the teacher reads its own env toggles:
// a plain os.Getenv check, no config-parsing library.
package cascetteconfig

import (
	"os"
	"strconv"
	"time"

	"github.com/wowemulation-dev/cascette-go/cdn"
	"github.com/wowemulation-dev/cascette-go/httprange"
	"github.com/wowemulation-dev/cascette-go/indexmanager"
	"github.com/wowemulation-dev/cascette-go/streaming"
)

// CacheDirEnvVar overrides Config.CacheDir when set.
const CacheDirEnvVar = "CASCETTE_CACHE_DIR"

// LogVerbosityEnvVar sets klog's -v verbosity level when set to an integer.
const LogVerbosityEnvVar = "CASCETTE_LOG_VERBOSITY"

// CacheTierConfig bounds one cache tier's retention.
type CacheTierConfig struct {
	// DefaultTTL is used by PutWithTTL callers that don't specify their
	// own; zero means entries don't expire by default.
	DefaultTTL time.Duration
	// MaxSizeBytes caps the tier's total size; enforcement is tier-specific
	// (bigcache's HardMaxCacheSize, IndexedDBTier's summed-size eviction).
	MaxSizeBytes int64
}

// Config aggregates every component's recognized options. Each field is the
// component's own option type where one already exists, so changes to a
// component's knobs don't need to be duplicated here.
type Config struct {
	// CacheDir is the on-disk cache root; see httprange/cdn content
	// layout in SPEC_FULL.md §6. CacheDirEnvVar overrides it if set.
	CacheDir string

	// EnableCaching toggles the index lookup LRU; when false,
	// IndexManager.LookupCacheCapacity is forced to 0.
	EnableCaching bool
	// MaxCacheEntries sizes the index lookup LRU when EnableCaching is true.
	MaxCacheEntries int
	// EnableBackgroundUpdates toggles the periodic index refresh task;
	// when false, IndexManager.RefreshInterval is forced to 0 regardless
	// of RefreshInterval below.
	EnableBackgroundUpdates bool
	// RefreshInterval is the index refresh period used when
	// EnableBackgroundUpdates is true.
	RefreshInterval time.Duration
	// MaxConcurrentFiles bounds parallel index-file loading.
	MaxConcurrentFiles int

	// BufferSize is the read-buffer size streaming I/O callers should use
	// (e.g. cascettecache.DiskCache.OpenReaderBuffered) when nothing more
	// specific applies.
	BufferSize int

	// HTTPClient tunes the underlying ranged-HTTP transport: connect and
	// request timeouts, pooling, and retry/backoff.
	HTTPClient httprange.Config

	// Streaming tunes the streaming BLTE decoder and archive extractor.
	Streaming streaming.Config

	// CircuitBreaker tunes the CDN failover circuit breaker.
	CircuitBreaker cdn.BreakerConfig

	// MemoryCache, DiskCache, IndexedDBCache are the per-tier TTL/size
	// limits described in SPEC_FULL.md §6.
	MemoryCache    CacheTierConfig
	DiskCache      CacheTierConfig
	IndexedDBCache CacheTierConfig
}

// Default returns Config populated with spec.md's stated defaults,
// applying CacheDirEnvVar if set in the environment.
func Default() Config {
	cfg := Config{
		CacheDir:                defaultCacheDir(),
		EnableCaching:           true,
		MaxCacheEntries:         10_000,
		EnableBackgroundUpdates: true,
		RefreshInterval:         5 * time.Minute,
		MaxConcurrentFiles:      indexmanager.DefaultMaxConcurrentFiles,
		BufferSize:              64 * 1024,
		HTTPClient:              httprange.DefaultConfig(),
		Streaming:               streaming.DefaultConfig(),
		CircuitBreaker:          cdn.DefaultBreakerConfig(),
		MemoryCache:             CacheTierConfig{DefaultTTL: 10 * time.Minute, MaxSizeBytes: 256 * 1024 * 1024},
		DiskCache:               CacheTierConfig{DefaultTTL: 0, MaxSizeBytes: 10 * 1024 * 1024 * 1024},
		IndexedDBCache:          CacheTierConfig{DefaultTTL: 30 * time.Minute, MaxSizeBytes: 512 * 1024 * 1024},
	}
	return cfg
}

func defaultCacheDir() string {
	if dir := os.Getenv(CacheDirEnvVar); dir != "" {
		return dir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".cascette-cache"
	}
	return dir + "/cascette"
}

// LogVerbosityFromEnv parses LogVerbosityEnvVar, returning ok=false if unset
// or unparseable so callers can fall back to their own default.
func LogVerbosityFromEnv() (level int, ok bool) {
	raw := os.Getenv(LogVerbosityEnvVar)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IndexManagerConfig derives an indexmanager.Config from the aggregate
// settings, honoring EnableCaching/EnableBackgroundUpdates as master
// toggles over the more specific capacity/interval fields.
func (c Config) IndexManagerConfig(archives []string) indexmanager.Config {
	cfg := indexmanager.Config{
		MaxConcurrentFiles: c.MaxConcurrentFiles,
		Archives:           archives,
	}
	if c.EnableCaching {
		cfg.LookupCacheCapacity = c.MaxCacheEntries
	}
	if c.EnableBackgroundUpdates {
		cfg.RefreshInterval = c.RefreshInterval
	}
	return cfg
}
