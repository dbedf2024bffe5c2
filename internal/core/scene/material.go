// Package scene holds the engine-side consumers of assets. They cache what
// they need from an asset's payload and refresh it when the asset resyncs.
package scene

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/joshuaeyu/plum/internal/core/assets"
)

// Material binds a shader to the textures its samplers read
type Material struct {
	Name string

	mu           sync.RWMutex
	shader       *assets.ShaderAsset
	textures     map[string]*assets.ImageAsset // sampler uniform -> image
	uniforms     []string
	samplers     []string
	textureSizes map[string][2]int
	revision     int
}

// NewMaterial creates a material over shader and registers it as a user
func NewMaterial(name string, shader *assets.ShaderAsset) *Material {
	m := &Material{
		Name:         name,
		shader:       shader,
		textures:     make(map[string]*assets.ImageAsset),
		textureSizes: make(map[string][2]int),
	}
	shader.AddUser(m)
	m.refresh()
	return m
}

// SetTexture binds img to a sampler uniform, replacing any previous binding
func (m *Material) SetTexture(sampler string, img *assets.ImageAsset) {
	m.mu.Lock()
	prev := m.textures[sampler]
	m.textures[sampler] = img
	stillUsed := false
	for _, t := range m.textures {
		if t == prev {
			stillUsed = true
			break
		}
	}
	m.mu.Unlock()

	if prev != nil && !stillUsed {
		prev.RemoveUser(m)
	}
	img.AddUser(m)
	m.refresh()
}

// OnAssetResync refreshes the cached shader interface and texture sizes
func (m *Material) OnAssetResync(ctx context.Context, a assets.Asset) error {
	m.refresh()
	return nil
}

func (m *Material) refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uniforms = nil
	m.samplers = nil
	if info := m.shader.Info(); info != nil {
		for _, u := range info.Uniforms {
			m.uniforms = append(m.uniforms, u.Name)
			if strings.HasPrefix(u.Type, "sampler") {
				m.samplers = append(m.samplers, u.Name)
			}
		}
	}

	for sampler, img := range m.textures {
		w, h := img.Size()
		m.textureSizes[sampler] = [2]int{w, h}
	}
	m.revision++
}

// Uniforms returns the uniform names declared by the shader
func (m *Material) Uniforms() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.uniforms...)
}

// UnboundSamplers returns sampler uniforms that have no texture bound
func (m *Material) UnboundSamplers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var missing []string
	for _, s := range m.samplers {
		if _, ok := m.textures[s]; !ok {
			missing = append(missing, s)
		}
	}
	sort.Strings(missing)
	return missing
}

// TextureSize returns the cached size of the texture bound to sampler
func (m *Material) TextureSize(sampler string) (int, int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.textureSizes[sampler]
	return s[0], s[1], ok
}

// Revision increases every time the material refreshes its caches
func (m *Material) Revision() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revision
}

// Detach unregisters the material from its shader and textures
func (m *Material) Detach() {
	m.mu.Lock()
	textures := make([]*assets.ImageAsset, 0, len(m.textures))
	for _, t := range m.textures {
		textures = append(textures, t)
	}
	m.mu.Unlock()

	m.shader.RemoveUser(m)
	for _, t := range textures {
		t.RemoveUser(m)
	}
}
