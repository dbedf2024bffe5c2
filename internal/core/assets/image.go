package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/ports"
)

// ImageAsset is a decoded texture source
type ImageAsset struct {
	base

	img    image.Image
	format string
}

// NewImageAsset creates an image asset backed by file. The payload is empty
// until the first Resync.
func NewImageAsset(file ports.File) *ImageAsset {
	a := &ImageAsset{}
	a.init(file, domain.KindImage, a, a.reload)
	return a
}

func (a *ImageAsset) reload(data []byte) error {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	a.img = img
	a.format = format
	return nil
}

// Image returns the decoded image, or nil before the first successful load
func (a *ImageAsset) Image() image.Image {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.img
}

// Format returns the name of the decoder that produced the image ("png", "webp", ...)
func (a *ImageAsset) Format() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.format
}

// Size returns the width and height in pixels
func (a *ImageAsset) Size() (int, int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.img == nil {
		return 0, 0
	}
	b := a.img.Bounds()
	return b.Dx(), b.Dy()
}
