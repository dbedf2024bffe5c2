package assets

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuaeyu/plum/internal/core/domain"
)

func TestManager_AddRemove(t *testing.T) {
	f := newFixture(t)
	f.write("mesh.obj", []byte(triangleOBJ))
	m := f.manager()

	a := NewModelAsset(f.loader.Open("mesh.obj"))
	require.NoError(t, m.Add("mesh.obj", a, false))
	assert.ErrorIs(t, m.Add("./mesh.obj", a, true), domain.ErrAssetExists)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Remove("mesh.obj"))
	assert.ErrorIs(t, m.Remove("mesh.obj"), domain.ErrAssetNotFound, "second remove fails")
	assert.Equal(t, 0, m.Len())

	// the path can be registered again after removal
	require.NoError(t, m.Add("mesh.obj", a, false))
}

func TestManager_RemoveUnknown(t *testing.T) {
	m := NewManager()
	assert.ErrorIs(t, m.Remove("nope.png"), domain.ErrAssetNotFound)
}

func TestManager_Load(t *testing.T) {
	f := newFixture(t)
	f.write("tex/brick.png", pngBytes(t, 2, 2))
	f.write("mesh.obj", []byte(triangleOBJ))
	f.write("basic.vert", []byte(basicVert))
	m := f.manager()
	ctx := context.Background()

	img, err := m.Load(ctx, "tex/brick.png", true)
	require.NoError(t, err)
	assert.IsType(t, &ImageAsset{}, img)
	assert.False(t, img.NeedsResync())

	model, err := m.Load(ctx, "mesh.obj", false)
	require.NoError(t, err)
	assert.Len(t, model.(*ModelAsset).Mesh().Triangles, 1)

	shader, err := m.Load(ctx, "basic.vert", true)
	require.NoError(t, err)
	assert.Equal(t, domain.KindShader, shader.Kind())

	assert.Equal(t, []string{"basic.vert", "mesh.obj", "tex/brick.png"}, m.Paths())
	assert.Equal(t, []string{"basic.vert", "tex/brick.png"}, m.HotPaths())
	assert.True(t, m.IsHot("tex/brick.png"))
	assert.False(t, m.IsHot("mesh.obj"))

	_, err = m.Load(ctx, "mesh.obj", false)
	assert.ErrorIs(t, err, domain.ErrAssetExists)
}

func TestManager_LoadSniffsImages(t *testing.T) {
	f := newFixture(t)
	f.write("albedo.texture", pngBytes(t, 1, 1))
	f.write("notes.txt", []byte("hello"))
	m := f.manager()
	ctx := context.Background()

	a, err := m.Load(ctx, "albedo.texture", false)
	require.NoError(t, err)
	assert.Equal(t, domain.KindImage, a.Kind())

	_, err = m.Load(ctx, "notes.txt", false)
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)
	assert.Equal(t, 1, m.Len())
}

func TestManager_LoadBrokenFileNotRegistered(t *testing.T) {
	f := newFixture(t)
	f.write("broken.obj", []byte("f 1 2 3\n"))
	m := f.manager()

	_, err := m.Load(context.Background(), "broken.obj", true)
	assert.Error(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestManager_LoadWithoutLoader(t *testing.T) {
	_, err := NewManager().Load(context.Background(), "a.png", false)
	assert.Error(t, err)
}

// loadPair registers a cold and a hot model with a user on each
func loadPair(t *testing.T, f *fixture, m *Manager) (cold, hot *countingUser) {
	t.Helper()
	ctx := context.Background()
	f.write("cold.obj", []byte(triangleOBJ))
	f.write("hot.obj", []byte(triangleOBJ))

	a, err := m.Load(ctx, "cold.obj", false)
	require.NoError(t, err)
	b, err := m.Load(ctx, "hot.obj", true)
	require.NoError(t, err)

	cold, hot = &countingUser{}, &countingUser{}
	a.AddUser(cold)
	b.AddUser(hot)
	return cold, hot
}

func TestManager_ColdSyncResyncsAllModified(t *testing.T) {
	f := newFixture(t)
	m := f.manager()
	coldUser, hotUser := loadPair(t, f, m)
	ctx := context.Background()

	f.write("cold.obj", []byte(triangleOBJ+"v 2 2 2\n"))
	f.write("hot.obj", []byte(triangleOBJ+"v 3 3 3\n"))

	report := m.ColdSyncWithDevice(ctx)
	require.NoError(t, report.Err())
	assert.Equal(t, domain.SyncCold, report.Mode)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, []string{"cold.obj", "hot.obj"}, report.Resynced)
	assert.Equal(t, 1, coldUser.count())
	assert.Equal(t, 1, hotUser.count())

	// nothing changed since, so the next sweep skips everything
	report = m.ColdSyncWithDevice(ctx)
	assert.Empty(t, report.Resynced)
	assert.Equal(t, []string{"cold.obj", "hot.obj"}, report.Skipped)
	assert.Equal(t, 1, coldUser.count())
}

func TestManager_HotSyncOnlyHotAssets(t *testing.T) {
	f := newFixture(t)
	m := f.manager()
	coldUser, hotUser := loadPair(t, f, m)
	ctx := context.Background()

	f.write("cold.obj", []byte(triangleOBJ+"v 2 2 2\n"))
	f.write("hot.obj", []byte(triangleOBJ+"v 3 3 3\n"))

	report := m.HotSyncWithDevice(ctx)
	require.NoError(t, report.Err())
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, []string{"hot.obj"}, report.Resynced)
	assert.Equal(t, 0, coldUser.count())
	assert.Equal(t, 1, hotUser.count())

	// the cold asset is still stale and a cold sweep picks it up
	cold, _ := m.Get("cold.obj")
	assert.True(t, cold.NeedsResync())
	report = m.ColdSyncWithDevice(ctx)
	assert.Equal(t, []string{"cold.obj"}, report.Resynced)
	assert.Equal(t, []string{"hot.obj"}, report.Skipped)
}

func TestManager_SetHot(t *testing.T) {
	f := newFixture(t)
	m := f.manager()
	coldUser, _ := loadPair(t, f, m)

	require.NoError(t, m.SetHot("cold.obj", true))
	assert.ErrorIs(t, m.SetHot("missing.obj", true), domain.ErrAssetNotFound)

	f.write("cold.obj", []byte(triangleOBJ+"v 2 2 2\n"))
	report := m.HotSyncWithDevice(context.Background())
	assert.Equal(t, []string{"cold.obj"}, report.Resynced)
	assert.Equal(t, 1, coldUser.count())
}

func TestManager_SyncFailureDoesNotStopSweep(t *testing.T) {
	f := newFixture(t)
	m := f.manager()
	coldUser, hotUser := loadPair(t, f, m)

	f.write("cold.obj", []byte("v 0\n"))
	f.write("hot.obj", []byte(triangleOBJ+"v 3 3 3\n"))

	report := m.ColdSyncWithDevice(context.Background())
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "cold.obj", report.Failures[0].Path)
	assert.Error(t, report.Err())
	assert.Equal(t, []string{"hot.obj"}, report.Resynced)
	assert.Equal(t, 0, coldUser.count())
	assert.Equal(t, 1, hotUser.count())
}

func TestManager_CanceledContext(t *testing.T) {
	f := newFixture(t)
	m := f.manager()
	_, hotUser := loadPair(t, f, m)
	f.write("hot.obj", []byte(triangleOBJ+"v 3 3 3\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := m.HotSyncWithDevice(ctx)
	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0].Err, context.Canceled)
	assert.Equal(t, 0, hotUser.count())
}

func TestManager_ObserverSeesEveryResync(t *testing.T) {
	f := newFixture(t)
	var seen []string
	m := f.manager(WithObserver(ObserverFunc(func(ctx context.Context, mode domain.SyncMode, a Asset, err error) {
		seen = append(seen, string(mode)+":"+a.Path())
	})))
	loadPair(t, f, m)

	f.write("hot.obj", []byte(triangleOBJ+"v 3 3 3\n"))
	m.HotSyncWithDevice(context.Background())
	m.ColdSyncWithDevice(context.Background())

	assert.Equal(t, []string{"hot:hot.obj"}, seen)
}

func TestManager_Restore(t *testing.T) {
	f := newFixture(t)
	f.write("mesh.obj", []byte(triangleOBJ))

	// first run: load and capture the baseline
	first := f.manager()
	_, err := first.Load(context.Background(), "mesh.obj", true)
	require.NoError(t, err)
	stamp, err := first.Stamp("mesh.obj")
	require.NoError(t, err)

	rec := domain.AssetRecord{Path: "mesh.obj", Kind: domain.KindModel, HotReload: true, ModTime: stamp.ModTime, Size: stamp.Size}

	// second run: the payload is loaded but the asset is not stale
	second := f.manager()
	a, err := second.Restore(rec, "mesh.obj")
	require.NoError(t, err)
	assert.False(t, a.NeedsResync())
	require.NotNil(t, a.(*ModelAsset).Mesh())
	assert.Len(t, a.(*ModelAsset).Mesh().Positions, 3)

	u := &countingUser{}
	a.AddUser(u)
	report := second.ColdSyncWithDevice(context.Background())
	assert.Equal(t, []string{"mesh.obj"}, report.Skipped)
	assert.Equal(t, 0, u.count())

	f.write("mesh.obj", []byte(triangleOBJ+"v 1 1 1\n"))
	report = second.HotSyncWithDevice(context.Background())
	assert.Equal(t, []string{"mesh.obj"}, report.Resynced)
	assert.Len(t, a.(*ModelAsset).Mesh().Positions, 4)
	assert.Equal(t, 1, u.count())
}

func TestManager_RestoreEditedWhileStopped(t *testing.T) {
	f := newFixture(t)
	f.write("mesh.obj", []byte(triangleOBJ))

	first := f.manager()
	_, err := first.Load(context.Background(), "mesh.obj", false)
	require.NoError(t, err)
	stamp, err := first.Stamp("mesh.obj")
	require.NoError(t, err)
	rec := domain.AssetRecord{Path: "mesh.obj", Kind: domain.KindModel, ModTime: stamp.ModTime, Size: stamp.Size}

	f.write("mesh.obj", []byte(triangleOBJ+"v 1 1 1\n"))

	second := f.manager()
	a, err := second.Restore(rec, "mesh.obj")
	require.NoError(t, err)
	assert.Len(t, a.(*ModelAsset).Mesh().Positions, 4)
	assert.True(t, a.NeedsResync(), "edit since the recorded baseline is still pending")

	u := &countingUser{}
	a.AddUser(u)
	report := second.ColdSyncWithDevice(context.Background())
	assert.Equal(t, []string{"mesh.obj"}, report.Resynced)
	assert.Equal(t, 1, u.count())
}

func TestManager_RestoreBrokenFile(t *testing.T) {
	f := newFixture(t)
	f.write("mesh.obj", []byte("f 1 2 3\n"))
	rec := domain.AssetRecord{Path: "mesh.obj", Kind: domain.KindModel}

	m := f.manager()
	a, err := m.Restore(rec, "mesh.obj")
	require.Error(t, err)
	require.NotNil(t, a, "asset stays registered")
	assert.Equal(t, 1, m.Len())
	assert.True(t, a.NeedsResync())

	_, err = m.Restore(domain.AssetRecord{Path: "notes.txt", Kind: domain.KindUnknown}, "notes.txt")
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)
	assert.Equal(t, 1, m.Len())
}

func TestManager_FailedReloadStaysStale(t *testing.T) {
	f := newFixture(t)
	f.write("mesh.obj", []byte(triangleOBJ))
	m := f.manager()
	ctx := context.Background()

	a, err := m.Load(ctx, "mesh.obj", true)
	require.NoError(t, err)
	before := a.(*ModelAsset).Mesh()

	f.write("mesh.obj", []byte("f 1 2\n"))
	report := m.ColdSyncWithDevice(ctx)
	require.Len(t, report.Failures, 1)
	assert.True(t, a.NeedsResync())
	assert.Same(t, before, a.(*ModelAsset).Mesh())

	report = m.ColdSyncWithDevice(ctx)
	require.Len(t, report.Failures, 1, "broken file is retried by every sweep")
	assert.Empty(t, report.Skipped)

	f.write("mesh.obj", []byte(triangleOBJ+"v 1 1 1\n"))
	report = m.ColdSyncWithDevice(ctx)
	require.NoError(t, report.Err())
	assert.Equal(t, []string{"mesh.obj"}, report.Resynced)
	assert.False(t, a.NeedsResync())
}

func TestManager_ConcurrentSweepsResyncOnce(t *testing.T) {
	f := newFixture(t)
	m := f.manager()
	_, hotUser := loadPair(t, f, m)
	ctx := context.Background()

	f.write("hot.obj", []byte(triangleOBJ+"v 3 3 3\n"))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.HotSyncWithDevice(ctx)
			m.ColdSyncWithDevice(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, hotUser.count())
}

func TestManager_StampUnknown(t *testing.T) {
	_, err := NewManager().Stamp("missing.png")
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestDefault_IsSingleton(t *testing.T) {
	a := Default()
	b := Default(WithLoader(nil))
	assert.Same(t, a, b)
}
