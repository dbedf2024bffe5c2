package ports

import (
	"context"
	"time"

	"github.com/joshuaeyu/plum/internal/core/domain"
)

// Version is the mtime and size observed by one stat of a file
type Version struct {
	ModTime time.Time
	Size    int64
}

// File is the port for a single file on the storage device
type File interface {
	// Path returns the path the file was opened with
	Path() string

	// Read returns the whole content and the version observed before reading.
	// The baseline does not move until Commit.
	Read() ([]byte, Version, error)

	// Commit records v as the baseline Modified compares against
	Commit(v Version)

	// Modified reports whether the file differs from the committed baseline
	Modified() bool

	// Baseline returns the committed mtime and size
	Baseline() (time.Time, int64)
}

// Device opens files on the storage device backing the assets
type Device interface {
	// Open returns a file that has never been read (always Modified)
	Open(path string) File

	// OpenAt returns a file whose baseline is restored from a previous run
	OpenAt(path string, modTime time.Time, size int64) File
}

// ManifestRepository defines the port for persisting tracked assets
type ManifestRepository interface {
	// Save adds or updates an asset record
	Save(ctx context.Context, rec domain.AssetRecord) error

	// Get retrieves a record by workspace-relative path
	Get(ctx context.Context, path string) (*domain.AssetRecord, error)

	// List returns every record sorted by path
	List(ctx context.Context) ([]domain.AssetRecord, error)

	// Delete removes a record; missing records return domain.ErrAssetNotFound
	Delete(ctx context.Context, path string) error
}

// Journal defines the port for the sync history
type Journal interface {
	// Append stores an event and returns its sequence number
	Append(ctx context.Context, ev domain.SyncEvent) (uint64, error)

	// Recent returns up to limit events, newest first, optionally filtered by path
	Recent(ctx context.Context, limit int, path string) ([]domain.SyncEvent, error)
}
