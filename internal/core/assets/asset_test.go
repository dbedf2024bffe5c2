package assets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuaeyu/plum/internal/core/domain"
)

func TestAsset_UserNotifiedOncePerResync(t *testing.T) {
	f := newFixture(t)
	f.write("mesh.obj", []byte(triangleOBJ))

	a := NewModelAsset(f.loader.Open("mesh.obj"))
	u := &countingUser{}
	a.AddUser(u)
	a.AddUser(u)
	assert.Equal(t, 1, a.Users())

	ctx := context.Background()
	require.NoError(t, a.Resync(ctx))
	assert.Equal(t, 1, u.count())

	require.NoError(t, a.Resync(ctx))
	assert.Equal(t, 2, u.count())
}

func TestAsset_RemoveUser(t *testing.T) {
	f := newFixture(t)
	f.write("mesh.obj", []byte(triangleOBJ))

	a := NewModelAsset(f.loader.Open("mesh.obj"))
	kept, dropped := &countingUser{}, &countingUser{}
	a.AddUser(kept)
	a.AddUser(dropped)
	a.RemoveUser(dropped)
	a.RemoveUser(&countingUser{})

	require.NoError(t, a.Resync(context.Background()))
	assert.Equal(t, 1, kept.count())
	assert.Equal(t, 0, dropped.count())
}

func TestAsset_FailedReloadKeepsPayload(t *testing.T) {
	f := newFixture(t)
	f.write("mesh.obj", []byte(triangleOBJ))

	a := NewModelAsset(f.loader.Open("mesh.obj"))
	ctx := context.Background()
	require.NoError(t, a.Resync(ctx))
	before := a.Mesh()
	require.NotNil(t, before)

	u := &countingUser{}
	a.AddUser(u)

	f.write("mesh.obj", []byte("v 0 0\n"))
	err := a.Resync(ctx)
	require.Error(t, err)
	assert.Same(t, before, a.Mesh())
	assert.Equal(t, 0, u.count(), "users are not told about failed reloads")
}

func TestAsset_UserErrorsAreJoined(t *testing.T) {
	f := newFixture(t)
	f.write("basic.vert", []byte(basicVert))

	a := NewShaderAsset(f.loader.Open("basic.vert"))
	boom := errors.New("boom")
	failing := &countingUser{err: boom}
	after := &countingUser{}
	a.AddUser(failing)
	a.AddUser(after)

	err := a.Resync(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, after.count(), "later users still run")
}

func TestImageAsset_Decode(t *testing.T) {
	f := newFixture(t)
	f.write("brick.png", pngBytes(t, 4, 2))

	a := NewImageAsset(f.loader.Open("brick.png"))
	require.NoError(t, a.Resync(context.Background()))

	w, h := a.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)
	assert.Equal(t, "png", a.Format())
	assert.Equal(t, domain.KindImage, a.Kind())
}

func TestImageAsset_Garbage(t *testing.T) {
	f := newFixture(t)
	f.write("bad.png", []byte("not an image"))

	a := NewImageAsset(f.loader.Open("bad.png"))
	assert.Error(t, a.Resync(context.Background()))
	assert.Nil(t, a.Image())
}

func TestShaderAsset_Info(t *testing.T) {
	f := newFixture(t)
	f.write("basic.vert", []byte(basicVert))

	a := NewShaderAsset(f.loader.Open("basic.vert"))
	require.NoError(t, a.Resync(context.Background()))

	info := a.Info()
	require.NotNil(t, info)
	assert.Equal(t, "vertex", string(info.Stage))
	assert.Equal(t, []string{"modelMatrix"}, info.UniformNames())
	assert.Equal(t, basicVert, a.Source())
}

func TestFuncUser(t *testing.T) {
	f := newFixture(t)
	f.write("mesh.obj", []byte(triangleOBJ))

	var got string
	a := NewModelAsset(f.loader.Open("mesh.obj"))
	a.AddUser(NewFuncUser("probe", func(ctx context.Context, a Asset) error {
		got = a.Path()
		return nil
	}))
	require.NoError(t, a.Resync(context.Background()))
	assert.Equal(t, "mesh.obj", got)
}
