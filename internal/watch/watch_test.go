package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isTS(path string) bool {
	return filepath.Ext(path) == ".ts"
}

func TestNew_SkipsDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, d := range []string{"src/ui", "node_modules/pkg", ".git/objects"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}

	w, err := New([]string{root}, Options{})
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, []string{
		root,
		filepath.Join(root, "src"),
		filepath.Join(root, "src", "ui"),
	}, w.Dirs())
}

func TestNew_FileRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "main.ts")
	require.NoError(t, os.WriteFile(file, []byte("export {};\n"), 0o644))

	w, err := New([]string{file}, Options{})
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, []string{root}, w.Dirs())
}

func TestNew_MissingRoot(t *testing.T) {
	t.Parallel()
	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, Options{})
	require.Error(t, err)
}

func TestRun_BatchesChanges(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w, err := New([]string{root}, Options{Debounce: 50 * time.Millisecond, Filter: isTS})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan []string, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, paths []string) error {
			got <- paths
			cancel()
			return nil
		})
	}()

	a := filepath.Join(root, "a.ts")
	b := filepath.Join(root, "b.ts")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(a, []byte("export {};\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("export {};\n"), 0o644))

	select {
	case paths := <-got:
		assert.Equal(t, []string{a, b}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestRun_HandlerErrorStops(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w, err := New([]string{root}, Options{Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	boom := assert.AnError
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context, []string) error { return boom })
	}()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.ts"), []byte("x"), 0o644))
	require.ErrorIs(t, <-done, boom)
}

func TestDefaultSkipDir(t *testing.T) {
	t.Parallel()
	assert.True(t, defaultSkipDir("/p/node_modules"))
	assert.True(t, defaultSkipDir("/p/.git"))
	assert.False(t, defaultSkipDir("/p/src"))
	assert.False(t, defaultSkipDir("."))
}
