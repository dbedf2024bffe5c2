package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/joshuaeyu/plum/internal/core/ports"
)

// Device opens files on an afero filesystem
type Device struct {
	fs afero.Fs
}

// New creates a device over fs
func New(fs afero.Fs) *Device {
	return &Device{fs: fs}
}

// NewOS creates a device over the operating system filesystem
func NewOS() *Device {
	return New(afero.NewOsFs())
}

// Fs returns the underlying filesystem
func (d *Device) Fs() afero.Fs {
	return d.fs
}

// Open returns a file with no baseline; it reports Modified until a read is committed
func (d *Device) Open(path string) ports.File {
	return &File{fs: d.fs, path: path}
}

// OpenAt returns a file with a baseline restored from a previous run
func (d *Device) OpenAt(path string, modTime time.Time, size int64) ports.File {
	return &File{fs: d.fs, path: path, seen: true, modTime: modTime, size: size}
}

// File tracks one path and the mtime/size of the last committed read
type File struct {
	fs   afero.Fs
	path string

	mu      sync.Mutex
	seen    bool
	modTime time.Time
	size    int64
}

func (f *File) Path() string {
	return f.path
}

// Read returns the file content. The version comes from a stat made before
// reading, so a write landing during the read shows up as modified once the
// version is committed.
func (f *File) Read() ([]byte, ports.Version, error) {
	info, err := f.fs.Stat(f.path)
	if err != nil {
		return nil, ports.Version{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, ports.Version{}, fmt.Errorf("%s is a directory", f.path)
	}

	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return nil, ports.Version{}, fmt.Errorf("failed to read file: %w", err)
	}
	return data, ports.Version{ModTime: info.ModTime(), Size: info.Size()}, nil
}

// Commit makes v the baseline
func (f *File) Commit(v ports.Version) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = true
	f.modTime = v.ModTime
	f.size = v.Size
}

// Modified reports true when the file was never read, disappeared, or its
// mtime or size differ from the baseline
func (f *File) Modified() bool {
	f.mu.Lock()
	seen, modTime, size := f.seen, f.modTime, f.size
	f.mu.Unlock()

	if !seen {
		return true
	}
	info, err := f.fs.Stat(f.path)
	if err != nil {
		return true
	}
	return !info.ModTime().Equal(modTime) || info.Size() != size
}

func (f *File) Baseline() (time.Time, int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.modTime, f.size
}
