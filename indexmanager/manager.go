package indexmanager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/wowemulation-dev/cascette-go/archiveindex"
	"github.com/wowemulation-dev/cascette-go/keys"
)

// Manager loads every `.idx`/`.index` file under a directory into an
// archiveindex.Resolver, in parallel under a bounded semaphore, and
// optionally keeps the resolver current with a background refresh task.
// Lookups do not wait for a refresh pass to finish: the resolver's single
// read-write lock is held only for each map insertion or read, not while
// index files are parsed.
type Manager struct {
	dir string
	cfg Config

	resolver *archiveindex.Resolver

	mu      sync.Mutex
	loaded  map[string]struct{}
	closed  bool
	cancel  context.CancelFunc
	refresh sync.WaitGroup
}

// New creates a Manager over dir, with an empty Resolver sized per cfg.
func New(dir string, cfg Config) *Manager {
	return &Manager{
		dir:      dir,
		cfg:      cfg,
		resolver: archiveindex.NewResolver(cfg.LookupCacheCapacity),
		loaded:   make(map[string]struct{}),
	}
}

// Resolver returns the Manager's underlying resolver, for callers that want
// direct access (e.g. to pass to a component constructed independently of
// the manager).
func (m *Manager) Resolver() *archiveindex.Resolver { return m.resolver }

// Lookup resolves an EncodingKey to its archive Location.
func (m *Manager) Lookup(ek keys.EncodingKey) (archiveindex.Location, bool) {
	return m.resolver.Lookup(ek)
}

// LoadDir scans the manager's directory and loads every index file not
// already loaded, parsing up to cfg.MaxConcurrentFiles files concurrently.
// A single file's parse failure does not abort the others; all errors are
// joined and returned together.
func (m *Manager) LoadDir(ctx context.Context) error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("indexmanager: read dir: %w", err)
	}

	var toLoad []string
	m.mu.Lock()
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".idx" && ext != ".index" {
			continue
		}
		if _, ok := m.loaded[name]; ok {
			continue
		}
		toLoad = append(toLoad, name)
	}
	m.mu.Unlock()

	if len(toLoad) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.maxConcurrentFiles())

	var (
		errMu sync.Mutex
		errs  []error
	)
	for _, name := range toLoad {
		name := name
		g.Go(func() error {
			if err := m.loadFile(gctx, name); err != nil {
				errMu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				errMu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	m.mu.Lock()
	for _, name := range toLoad {
		m.loaded[name] = struct{}{}
	}
	m.mu.Unlock()
	return nil
}

func (m *Manager) loadFile(_ context.Context, name string) error {
	bucket, ok := archiveindex.BucketFromFilename(name)
	if !ok {
		return ErrNoBucket
	}

	data, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".idx" {
		archiveHash := strings.TrimSuffix(name, filepath.Ext(name))
		idx, err := archiveindex.ParseIdx(data, archiveHash, bucket)
		if err != nil {
			return err
		}
		m.resolver.AddIndex(idx)
		return nil
	}

	if len(m.cfg.Archives) == 0 {
		klog.Warningf("indexmanager: skipping group index %s: no archive table configured", name)
		return nil
	}
	gi, err := archiveindex.ParseGroupIndex(data, m.cfg.Archives, bucket)
	if err != nil {
		return err
	}
	m.resolver.AddIndex(gi)
	return nil
}

// Start begins the background refresh task if cfg.RefreshInterval is
// non-zero. It performs an initial LoadDir synchronously before returning.
// Calling Start on a closed Manager, or while its refresh task is already
// running, returns ErrClosed.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if err := m.LoadDir(ctx); err != nil {
		return err
	}

	if m.cfg.RefreshInterval <= 0 {
		return nil
	}

	m.mu.Lock()
	if m.closed || m.cancel != nil {
		m.mu.Unlock()
		return ErrClosed
	}
	refreshCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.mu.Unlock()

	m.refresh.Add(1)
	go m.runRefresh(refreshCtx)
	return nil
}

func (m *Manager) runRefresh(ctx context.Context) {
	defer m.refresh.Done()

	ticker := time.NewTicker(m.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.LoadDir(ctx); err != nil {
				klog.Warningf("indexmanager: refresh pass failed: %v", err)
			}
		}
	}
}

// Close stops the background refresh task, if running, and waits for it to
// exit before returning. Close is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.refresh.Wait()
	return nil
}
