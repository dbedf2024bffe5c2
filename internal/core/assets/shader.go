package assets

import (
	"fmt"

	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/ports"
	"github.com/joshuaeyu/plum/pkg/glsl"
)

// ShaderAsset is GLSL source with its interface scanned out
type ShaderAsset struct {
	base

	source string
	info   *glsl.Source
}

// NewShaderAsset creates a shader asset backed by file
func NewShaderAsset(file ports.File) *ShaderAsset {
	a := &ShaderAsset{}
	a.init(file, domain.KindShader, a, a.reload)
	return a
}

func (a *ShaderAsset) reload(data []byte) error {
	src := string(data)
	info, err := glsl.Parse(src, glsl.StageFromPath(a.Path()))
	if err != nil {
		return fmt.Errorf("failed to scan shader: %w", err)
	}
	a.source = src
	a.info = info
	return nil
}

// Source returns the shader text
func (a *ShaderAsset) Source() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.source
}

// Info returns what was scanned from the source, or nil before the first load
func (a *ShaderAsset) Info() *glsl.Source {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.info
}
