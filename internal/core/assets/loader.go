package assets

import (
	"fmt"
	"time"

	"github.com/h2non/filetype"

	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/ports"
)

// Loader turns paths on a device into concrete assets
type Loader struct {
	device ports.Device
}

// NewLoader creates a loader reading from device
func NewLoader(device ports.Device) *Loader {
	return &Loader{device: device}
}

// Open returns a never-read file for path
func (l *Loader) Open(path string) ports.File {
	return l.device.Open(path)
}

// OpenAt returns a file whose baseline was recorded by an earlier run
func (l *Loader) OpenAt(path string, modTime time.Time, size int64) ports.File {
	return l.device.OpenAt(path, modTime, size)
}

// Detect resolves the kind of file, sniffing the content when the extension
// is not recognized. Only images carry magic numbers worth sniffing.
func (l *Loader) Detect(file ports.File) (domain.Kind, error) {
	if kind := domain.KindFromPath(file.Path()); kind != domain.KindUnknown {
		return kind, nil
	}

	data, _, err := file.Read()
	if err != nil {
		return domain.KindUnknown, fmt.Errorf("failed to read %s: %w", file.Path(), err)
	}
	if filetype.IsImage(data) {
		return domain.KindImage, nil
	}
	return domain.KindUnknown, nil
}

// Build wraps file in the asset type for kind. The payload is loaded by the
// first Resync.
func (l *Loader) Build(file ports.File, kind domain.Kind) (Asset, error) {
	switch kind {
	case domain.KindImage:
		return NewImageAsset(file), nil
	case domain.KindModel:
		return NewModelAsset(file), nil
	case domain.KindShader:
		return NewShaderAsset(file), nil
	default:
		return nil, fmt.Errorf("%s: %w", file.Path(), domain.ErrUnsupportedKind)
	}
}
