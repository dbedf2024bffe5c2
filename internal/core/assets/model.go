package assets

import (
	"bytes"
	"fmt"

	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/ports"
	"github.com/joshuaeyu/plum/pkg/wavefront"
)

// ModelAsset is triangulated geometry read from a Wavefront OBJ file
type ModelAsset struct {
	base

	mesh *wavefront.Mesh
}

// NewModelAsset creates a model asset backed by file
func NewModelAsset(file ports.File) *ModelAsset {
	a := &ModelAsset{}
	a.init(file, domain.KindModel, a, a.reload)
	return a
}

func (a *ModelAsset) reload(data []byte) error {
	mesh, err := wavefront.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse obj: %w", err)
	}
	a.mesh = mesh
	return nil
}

// Mesh returns the parsed geometry, or nil before the first successful load.
// The mesh is replaced, never mutated, on resync.
func (a *ModelAsset) Mesh() *wavefront.Mesh {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mesh
}
