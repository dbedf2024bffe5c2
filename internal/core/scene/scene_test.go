package scene

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuaeyu/plum/internal/adapters/device"
	"github.com/joshuaeyu/plum/internal/core/assets"
)

type world struct {
	t   *testing.T
	fs  afero.Fs
	m   *assets.Manager
	now time.Time
}

func newWorld(t *testing.T) *world {
	fs := afero.NewMemMapFs()
	return &world{
		t:   t,
		fs:  fs,
		m:   assets.NewManager(assets.WithLoader(assets.NewLoader(device.New(fs)))),
		now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (w *world) write(path string, data []byte) {
	w.t.Helper()
	w.now = w.now.Add(time.Second)
	require.NoError(w.t, afero.WriteFile(w.fs, path, data, 0644))
	require.NoError(w.t, w.fs.Chtimes(path, w.now, w.now))
}

func (w *world) load(path string, data []byte) assets.Asset {
	w.t.Helper()
	w.write(path, data)
	a, err := w.m.Load(context.Background(), path, true)
	require.NoError(w.t, err)
	return a
}

func pngData(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

const litFrag = "#version 330\nuniform sampler2D diffuseMap;\nuniform sampler2D normalMap;\nuniform vec3 lightPos;\nout vec4 color;\n"

func TestMaterial_RefreshesOnShaderResync(t *testing.T) {
	w := newWorld(t)
	shader := w.load("lit.frag", []byte(litFrag)).(*assets.ShaderAsset)
	diffuse := w.load("diffuse.png", pngData(t, 8, 8)).(*assets.ImageAsset)

	mat := NewMaterial("brick", shader)
	mat.SetTexture("diffuseMap", diffuse)

	assert.Equal(t, []string{"diffuseMap", "normalMap", "lightPos"}, mat.Uniforms())
	assert.Equal(t, []string{"normalMap"}, mat.UnboundSamplers())
	rev := mat.Revision()

	w.write("lit.frag", []byte("#version 330\nuniform sampler2D diffuseMap;\nout vec4 color;\n"))
	report := w.m.HotSyncWithDevice(context.Background())
	require.NoError(t, report.Err())

	assert.Equal(t, []string{"diffuseMap"}, mat.Uniforms())
	assert.Empty(t, mat.UnboundSamplers())
	assert.Equal(t, rev+1, mat.Revision())
}

func TestMaterial_TextureResync(t *testing.T) {
	w := newWorld(t)
	shader := w.load("lit.frag", []byte(litFrag)).(*assets.ShaderAsset)
	diffuse := w.load("diffuse.png", pngData(t, 8, 8)).(*assets.ImageAsset)

	mat := NewMaterial("brick", shader)
	mat.SetTexture("diffuseMap", diffuse)
	mat.SetTexture("normalMap", diffuse)
	assert.Equal(t, 1, diffuse.Users(), "shared texture registers the material once")

	w.write("diffuse.png", pngData(t, 16, 4))
	w.m.HotSyncWithDevice(context.Background())

	width, height, ok := mat.TextureSize("normalMap")
	require.True(t, ok)
	assert.Equal(t, 16, width)
	assert.Equal(t, 4, height)
}

func TestMaterial_RebindReleasesOldTexture(t *testing.T) {
	w := newWorld(t)
	shader := w.load("lit.frag", []byte(litFrag)).(*assets.ShaderAsset)
	oldTex := w.load("old.png", pngData(t, 2, 2)).(*assets.ImageAsset)
	newTex := w.load("new.png", pngData(t, 4, 4)).(*assets.ImageAsset)

	mat := NewMaterial("brick", shader)
	mat.SetTexture("diffuseMap", oldTex)
	mat.SetTexture("diffuseMap", newTex)

	assert.Equal(t, 0, oldTex.Users())
	assert.Equal(t, 1, newTex.Users())

	mat.Detach()
	assert.Equal(t, 0, newTex.Users())
	assert.Equal(t, 0, shader.Users())
}

func TestMeshNode_RefreshesOnModelResync(t *testing.T) {
	w := newWorld(t)
	model := w.load("tri.obj", []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")).(*assets.ModelAsset)

	node := NewMeshNode("tri", model, nil)
	assert.Equal(t, 1, node.Triangles())

	w.write("tri.obj", []byte("v 0 0 0\nv 2 0 0\nv 2 2 0\nv 0 2 0\nf 1 2 3 4\n"))
	report := w.m.ColdSyncWithDevice(context.Background())
	require.NoError(t, report.Err())

	assert.Equal(t, 2, node.Triangles())
	_, hi, radius := node.Bounds()
	assert.Equal(t, float32(2), hi[0])
	assert.InDelta(t, 1.4142, radius, 0.001)
	assert.Equal(t, 2, node.Revision())

	node.Detach()
	assert.Equal(t, 0, model.Users())
}
