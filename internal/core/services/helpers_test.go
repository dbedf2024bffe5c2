package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/joshuaeyu/plum/internal/adapters/device"
	"github.com/joshuaeyu/plum/internal/core/assets"
	"github.com/joshuaeyu/plum/internal/core/ports/mocks"
	"github.com/joshuaeyu/plum/pkg/workspace"
)

const testRoot = "/ws"

// testEnv wires the services over an in-memory filesystem
type testEnv struct {
	t        *testing.T
	fs       afero.Fs
	ws       *workspace.Workspace
	loader   *assets.Loader
	manager  *assets.Manager
	manifest *mocks.MockManifestRepository
	journal  *mocks.MockJournal
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	fs := afero.NewMemMapFs()
	loader := assets.NewLoader(device.New(fs))
	return &testEnv{
		t:        t,
		fs:       fs,
		ws:       workspace.New(testRoot),
		loader:   loader,
		manager:  assets.NewManager(assets.WithLoader(loader)),
		manifest: mocks.NewMockManifestRepository(),
		journal:  mocks.NewMockJournal(),
		now:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// write stores data at a workspace-relative path and returns the absolute path
func (e *testEnv) write(rel string, data []byte) string {
	e.t.Helper()
	abs := path.Join(testRoot, rel)
	e.now = e.now.Add(time.Second)
	require.NoError(e.t, afero.WriteFile(e.fs, abs, data, 0644))
	require.NoError(e.t, e.fs.Chtimes(abs, e.now, e.now))
	return abs
}

func (e *testEnv) track() *TrackService {
	return NewTrackService(e.ws, e.manager, e.manifest, e.fs)
}

func (e *testEnv) sync() *SyncService {
	return NewSyncService(e.ws, e.manager, e.manifest, e.journal, e.fs, nil)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

const (
	testOBJ  = "o tri\nv 0 0 0\nv 2 0 0\nv 0 2 0\nusemtl red\nf 1 2 3\n"
	testFrag = "#version 330 core\nuniform sampler2D diffuse;\nout vec4 color;\nvoid main() {}\n"
)
