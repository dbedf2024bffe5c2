package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/pkg/workspace"
)

// ManifestRepository stores tracked asset records in a JSON manifest.
// Several plum processes may share one manifest, so writes always start from
// the file on disk and reads refresh the cache when the file changed.
type ManifestRepository struct {
	manifestPath string
	mu           sync.Mutex
	cache        map[string]domain.AssetRecord
	loaded       bool
	modTime      time.Time
	size         int64
}

func NewManifestRepository(ws *workspace.Workspace) *ManifestRepository {
	return &ManifestRepository{
		manifestPath: ws.ManifestPath(),
		cache:        make(map[string]domain.AssetRecord),
	}
}

// load refreshes the cache from disk. Unless force is set the read is
// skipped while the file's mtime and size match the last copy seen.
// Callers hold mu.
func (r *ManifestRepository) load(force bool) error {
	info, err := os.Stat(r.manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			r.cache = make(map[string]domain.AssetRecord)
			r.loaded = true
			r.modTime, r.size = time.Time{}, 0
			return nil
		}
		return fmt.Errorf("failed to stat manifest: %w", err)
	}
	if !force && r.loaded && info.ModTime().Equal(r.modTime) && info.Size() == r.size {
		return nil
	}

	data, err := os.ReadFile(r.manifestPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	cache := make(map[string]domain.AssetRecord)
	if err := json.Unmarshal(data, &cache); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}
	if cache == nil {
		cache = make(map[string]domain.AssetRecord)
	}
	r.cache = cache
	r.loaded = true
	r.modTime, r.size = info.ModTime(), info.Size()
	return nil
}

// flush writes the cache to disk; callers hold mu
func (r *ManifestRepository) flush() error {
	data, err := json.MarshalIndent(r.cache, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.manifestPath), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	// Write-then-rename so a crash never leaves a truncated manifest
	tmp := r.manifestPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, r.manifestPath); err != nil {
		return fmt.Errorf("failed to replace manifest: %w", err)
	}

	if info, err := os.Stat(r.manifestPath); err == nil {
		r.modTime, r.size = info.ModTime(), info.Size()
	}
	return nil
}

// Save persists a record to the manifest
func (r *ManifestRepository) Save(ctx context.Context, rec domain.AssetRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(true); err != nil {
		return err
	}
	r.cache[rec.Path] = rec
	return r.flush()
}

func (r *ManifestRepository) Get(ctx context.Context, path string) (*domain.AssetRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(false); err != nil {
		return nil, err
	}

	rec, ok := r.cache[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrAssetNotFound)
	}
	return &rec, nil
}

func (r *ManifestRepository) List(ctx context.Context) ([]domain.AssetRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(false); err != nil {
		return nil, err
	}

	records := make([]domain.AssetRecord, 0, len(r.cache))
	for _, rec := range r.cache {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, nil
}

func (r *ManifestRepository) Delete(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(true); err != nil {
		return err
	}
	if _, ok := r.cache[path]; !ok {
		return fmt.Errorf("%s: %w", path, domain.ErrAssetNotFound)
	}
	delete(r.cache, path)
	return r.flush()
}
