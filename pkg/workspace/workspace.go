package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshuaeyu/plum/internal/core/domain"
)

// StateDirName is the directory holding plum's state inside a workspace
const StateDirName = ".plum"

// Workspace represents a directory of assets plus its state directory
type Workspace struct {
	RootPath  string
	StatePath string
}

// New creates a workspace rooted at root
func New(root string) *Workspace {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Workspace{
		RootPath:  root,
		StatePath: filepath.Join(root, StateDirName),
	}
}

// Discover walks up from start until it finds a directory containing a
// state directory. It falls back to start itself when none is found.
func Discover(start string) (*Workspace, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	for dir := abs; ; {
		if info, err := os.Stat(filepath.Join(dir, StateDirName)); err == nil && info.IsDir() {
			return New(dir), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return New(abs), nil
}

// Initialize creates the state directory if it doesn't exist
func (w *Workspace) Initialize() error {
	if err := os.MkdirAll(w.StatePath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", w.StatePath, err)
	}
	return nil
}

// Exists checks if the workspace has been initialized
func (w *Workspace) Exists() bool {
	info, err := os.Stat(w.StatePath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ConfigPath returns the path of the workspace configuration file
func (w *Workspace) ConfigPath() string {
	return filepath.Join(w.StatePath, "config.yaml")
}

// ManifestPath returns the path of the tracked-asset manifest
func (w *Workspace) ManifestPath() string {
	return filepath.Join(w.StatePath, "manifest.json")
}

// JournalPath returns the path of the sync history database
func (w *Workspace) JournalPath() string {
	return filepath.Join(w.StatePath, "journal.db")
}

// Rel converts a path (absolute, or relative to the working directory) into
// the slash-separated form stored in the manifest
func (w *Workspace) Rel(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	rel, err := filepath.Rel(w.RootPath, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", path, domain.ErrOutsideWorkspace)
	}
	if rel == "." {
		return "", fmt.Errorf("%s: workspace root is not an asset", path)
	}
	return filepath.ToSlash(rel), nil
}

// Abs returns the absolute path for a manifest-relative path
func (w *Workspace) Abs(rel string) string {
	return filepath.Join(w.RootPath, filepath.FromSlash(rel))
}
