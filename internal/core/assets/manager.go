package assets

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/joshuaeyu/plum/internal/core/domain"
)

// SyncObserver is told about every resync a sweep performs
type SyncObserver interface {
	AssetResynced(ctx context.Context, mode domain.SyncMode, a Asset, err error)
}

// ObserverFunc adapts a function to SyncObserver
type ObserverFunc func(ctx context.Context, mode domain.SyncMode, a Asset, err error)

func (f ObserverFunc) AssetResynced(ctx context.Context, mode domain.SyncMode, a Asset, err error) {
	f(ctx, mode, a, err)
}

type entry struct {
	asset Asset
	hot   bool
}

// Manager is the registry of assets keyed by path. It owns every asset it
// holds; removing an asset drops the registry's only reference.
type Manager struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	loader    *Loader
	observers []SyncObserver

	// sweeps run one at a time so an edit is resynced once
	sweepMu sync.Mutex
}

// Option configures a Manager
type Option func(*Manager)

// WithLoader sets the loader used by Load and Restore
func WithLoader(l *Loader) Option {
	return func(m *Manager) { m.loader = l }
}

// WithObserver adds a sync observer
func WithObserver(o SyncObserver) Option {
	return func(m *Manager) { m.observers = append(m.observers, o) }
}

var (
	defaultManager *Manager
	defaultOnce    sync.Once
)

// Default returns the process-wide manager. Options only apply on the first call.
func Default(opts ...Option) *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager(opts...)
	})
	return defaultManager
}

// NewManager creates an empty registry
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddObserver registers o for subsequent sweeps
func (m *Manager) AddObserver(o SyncObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// Add registers an already constructed asset under path
func (m *Manager) Add(path string, a Asset, hot bool) error {
	key := filepath.Clean(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; ok {
		return fmt.Errorf("%s: %w", key, domain.ErrAssetExists)
	}
	m.entries[key] = &entry{asset: a, hot: hot}
	return nil
}

// Load opens path, builds the asset for its kind, reads it and registers it
func (m *Manager) Load(ctx context.Context, path string, hot bool) (Asset, error) {
	if m.loader == nil {
		return nil, fmt.Errorf("manager has no loader")
	}
	key := filepath.Clean(path)

	if _, ok := m.Get(key); ok {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrAssetExists)
	}

	file := m.loader.Open(key)
	kind, err := m.loader.Detect(file)
	if err != nil {
		return nil, err
	}
	a, err := m.loader.Build(file, kind)
	if err != nil {
		return nil, err
	}
	if err := a.Resync(ctx); err != nil {
		return nil, err
	}

	if err := m.Add(key, a, hot); err != nil {
		return nil, err
	}
	return a, nil
}

// Restore registers an asset recorded by an earlier run and loads its
// payload. Staleness is still judged against the recorded baseline, so a file
// edited since then is picked up, and its users notified, by the next sweep.
// When the payload cannot be loaded the asset stays registered and stale,
// and the load error is returned alongside it.
func (m *Manager) Restore(rec domain.AssetRecord, path string) (Asset, error) {
	if m.loader == nil {
		return nil, fmt.Errorf("manager has no loader")
	}
	key := filepath.Clean(path)

	file := m.loader.OpenAt(key, rec.ModTime, rec.Size)
	a, err := m.loader.Build(file, rec.Kind)
	if err != nil {
		return nil, err
	}
	if err := m.Add(key, a, rec.HotReload); err != nil {
		return nil, err
	}
	if p, ok := a.(interface{ prime() error }); ok {
		if err := p.prime(); err != nil {
			return a, err
		}
	}
	return a, nil
}

// Remove unregisters path. Removing a path that is not registered fails.
func (m *Manager) Remove(path string) error {
	key := filepath.Clean(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		return fmt.Errorf("%s: %w", key, domain.ErrAssetNotFound)
	}
	delete(m.entries, key)
	return nil
}

// Get returns the asset registered under path
func (m *Manager) Get(path string) (Asset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[filepath.Clean(path)]
	if !ok {
		return nil, false
	}
	return e.asset, true
}

// IsHot reports whether path is flagged for hot reload
func (m *Manager) IsHot(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[filepath.Clean(path)]
	return ok && e.hot
}

// SetHot changes the hot-reload flag of a registered path
func (m *Manager) SetHot(path string, hot bool) error {
	key := filepath.Clean(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, domain.ErrAssetNotFound)
	}
	e.hot = hot
	return nil
}

// Paths returns every registered path in sorted order
func (m *Manager) Paths() []string {
	return m.paths(false)
}

// HotPaths returns the registered paths flagged for hot reload
func (m *Manager) HotPaths() []string {
	return m.paths(true)
}

func (m *Manager) paths(hotOnly bool) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.entries))
	for p, e := range m.entries {
		if hotOnly && !e.hot {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of registered assets
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// ColdSyncWithDevice resyncs every registered asset whose file changed
func (m *Manager) ColdSyncWithDevice(ctx context.Context) domain.SyncReport {
	return m.sync(ctx, domain.SyncCold)
}

// HotSyncWithDevice resyncs the hot-reload assets whose file changed
func (m *Manager) HotSyncWithDevice(ctx context.Context) domain.SyncReport {
	return m.sync(ctx, domain.SyncHot)
}

func (m *Manager) sync(ctx context.Context, mode domain.SyncMode) domain.SyncReport {
	m.sweepMu.Lock()
	defer m.sweepMu.Unlock()

	type target struct {
		path  string
		asset Asset
	}

	m.mu.RLock()
	targets := make([]target, 0, len(m.entries))
	for p, e := range m.entries {
		if mode == domain.SyncHot && !e.hot {
			continue
		}
		targets = append(targets, target{path: p, asset: e.asset})
	}
	observers := append([]SyncObserver(nil), m.observers...)
	m.mu.RUnlock()

	sort.Slice(targets, func(i, j int) bool { return targets[i].path < targets[j].path })

	report := domain.SyncReport{Mode: mode, Checked: len(targets)}

	// Resyncs run without the registry lock; users may call back into the
	// manager but must not start another sweep
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, domain.SyncFailure{Path: t.path, Err: err})
			continue
		}
		if !t.asset.NeedsResync() {
			report.Skipped = append(report.Skipped, t.path)
			continue
		}

		err := t.asset.Resync(ctx)
		for _, o := range observers {
			o.AssetResynced(ctx, mode, t.asset, err)
		}
		if err != nil {
			report.Failures = append(report.Failures, domain.SyncFailure{Path: t.path, Err: err})
			continue
		}
		report.Resynced = append(report.Resynced, t.path)
	}

	return report
}

// Stamp is the baseline of a registered asset's file
type Stamp struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// Stamp returns the file baseline recorded for path
func (m *Manager) Stamp(path string) (Stamp, error) {
	a, ok := m.Get(path)
	if !ok {
		return Stamp{}, fmt.Errorf("%s: %w", path, domain.ErrAssetNotFound)
	}
	mt, size := a.File().Baseline()
	return Stamp{Path: a.Path(), ModTime: mt, Size: size}, nil
}
