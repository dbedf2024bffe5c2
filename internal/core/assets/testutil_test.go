package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/joshuaeyu/plum/internal/adapters/device"
)

// fixture is an in-memory device with a clock that advances on every write
type fixture struct {
	t      *testing.T
	fs     afero.Fs
	loader *Loader
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	fs := afero.NewMemMapFs()
	return &fixture{
		t:      t,
		fs:     fs,
		loader: NewLoader(device.New(fs)),
		now:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) write(path string, data []byte) {
	f.t.Helper()
	f.now = f.now.Add(time.Second)
	require.NoError(f.t, afero.WriteFile(f.fs, path, data, 0644))
	require.NoError(f.t, f.fs.Chtimes(path, f.now, f.now))
}

func (f *fixture) manager(opts ...Option) *Manager {
	return NewManager(append([]Option{WithLoader(f.loader)}, opts...)...)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

const triangleOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

const basicVert = "#version 330 core\nuniform mat4 modelMatrix;\nin vec3 vertexPosition;\nvoid main() {}\n"

// countingUser records every resync callback it receives
type countingUser struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (u *countingUser) OnAssetResync(ctx context.Context, a Asset) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, a.Path())
	return u.err
}

func (u *countingUser) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.calls)
}
