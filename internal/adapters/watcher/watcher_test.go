package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, paths []string, fired *atomic.Int32) *Watcher {
	t.Helper()
	w, err := New(func(ctx context.Context) { fired.Add(1) }, Options{
		Debounce: 50 * time.Millisecond,
		Ignore:   []string{".*", "*.swp"},
	})
	require.NoError(t, err)
	require.NoError(t, w.Refresh(paths))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return w
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "lit.frag")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0644))

	var fired atomic.Int32
	startWatcher(t, []string{target}, &fired)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("v2"), 0644))
	}

	assert.Eventually(t, func() bool { return fired.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "burst collapses into one trigger")
}

func TestWatcher_IgnoresUntrackedAndPatterns(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "lit.frag")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0644))

	var fired atomic.Int32
	startWatcher(t, []string{target}, &fired)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.frag"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lit.frag.swp"), []byte("x"), 0644))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestWatcher_RefreshDropsDirectories(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	fileA := filepath.Join(a, "a.png")
	fileB := filepath.Join(b, "b.png")

	var fired atomic.Int32
	w := startWatcher(t, []string{fileA, fileB}, &fired)
	assert.Equal(t, 2, w.Dirs())

	require.NoError(t, w.Refresh([]string{fileA}))
	assert.Equal(t, 1, w.Dirs())

	require.NoError(t, os.WriteFile(fileB, []byte("x"), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
