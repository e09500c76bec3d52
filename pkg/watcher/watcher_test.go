package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vividtools/vivid-ide/config"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) record(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, paths)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

func newWatcher(t *testing.T, root string, cfg config.WatcherConfig) (*Watcher, *recorder) {
	t.Helper()
	rec := &recorder{}
	w, err := New(root, cfg, rec.record)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w, rec
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func waitFor(t *testing.T, rec *recorder, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, p := range rec.all() {
			if filepath.Base(p) == want {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond, "never saw %s", want)
}

func TestReportsSourceWrites(t *testing.T) {
	root := t.TempDir()
	_, rec := newWatcher(t, root, config.WatcherConfig{DebounceMS: 30})

	write(t, filepath.Join(root, "chain.cpp"), "// sketch")
	waitFor(t, rec, "chain.cpp")
}

func TestIgnoresBuildArtifactsAndBookkeeping(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".vivid"), 0o755))
	_, rec := newWatcher(t, root, config.WatcherConfig{DebounceMS: 30})

	write(t, filepath.Join(root, "build", "chain.o"), "obj")
	write(t, filepath.Join(root, ".vivid", "cache"), "x")
	write(t, filepath.Join(root, "noise.dylib"), "bin")
	write(t, filepath.Join(root, "keep.cpp"), "// keep")

	waitFor(t, rec, "keep.cpp")
	for _, p := range rec.all() {
		base := filepath.Base(p)
		assert.NotEqual(t, "chain.o", base)
		assert.NotEqual(t, "cache", base)
		assert.NotEqual(t, "noise.dylib", base)
	}
}

func TestConfigPatternsExtendDefaults(t *testing.T) {
	root := t.TempDir()
	_, rec := newWatcher(t, root, config.WatcherConfig{
		DebounceMS: 30,
		Ignore:     []string{"*.gen.cpp"},
	})

	write(t, filepath.Join(root, "shader.gen.cpp"), "// generated")
	write(t, filepath.Join(root, "shader.cpp"), "// source")

	waitFor(t, rec, "shader.cpp")
	for _, p := range rec.all() {
		assert.NotEqual(t, "shader.gen.cpp", filepath.Base(p))
	}
}

func TestCoalescesWriteBursts(t *testing.T) {
	root := t.TempDir()
	_, rec := newWatcher(t, root, config.WatcherConfig{DebounceMS: 120})

	for i := 0; i < 5; i++ {
		write(t, filepath.Join(root, "chain.cpp"), "// rev")
		time.Sleep(10 * time.Millisecond)
	}

	waitFor(t, rec, "chain.cpp")
	// The burst lands as one batch once the quiet period elapses.
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestPicksUpNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	_, rec := newWatcher(t, root, config.WatcherConfig{DebounceMS: 30})

	require.NoError(t, os.MkdirAll(filepath.Join(root, "shaders"), 0o755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(200 * time.Millisecond)
	write(t, filepath.Join(root, "shaders", "blur.glsl"), "// pass")

	waitFor(t, rec, "blur.glsl")
}

func TestCloseStopsDelivery(t *testing.T) {
	root := t.TempDir()
	w, rec := newWatcher(t, root, config.WatcherConfig{DebounceMS: 30})

	require.NoError(t, w.Close())
	require.NoError(t, w.Close()) // idempotent

	write(t, filepath.Join(root, "late.cpp"), "// late")
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, rec.count())
}
