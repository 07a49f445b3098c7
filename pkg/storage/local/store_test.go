package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	store, err := New(root)
	require.NoError(t, err)

	info, err := os.Stat(store.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = New("  ")
	require.Error(t, err)
}

func TestSaveAndRemove(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a.png", strings.NewReader("png-bytes")))
	data, err := os.ReadFile(filepath.Join(store.Root(), "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	ok, err := store.Exists(ctx, "a.png")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Remove(ctx, "a.png"))
	ok, err = store.Exists(ctx, "a.png")
	require.NoError(t, err)
	assert.False(t, ok)

	// already gone
	require.NoError(t, store.Remove(ctx, "a.png"))
}

func TestRejectsPathsOutsideRoot(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"../escape.png", "sub/file.png", `..\x.png`, "..", ""} {
		assert.Error(t, store.Save(ctx, name, strings.NewReader("x")), name)
		assert.Error(t, store.Remove(ctx, name), name)
	}
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, store.Save(ctx, "a.png", strings.NewReader("x")))
	objects, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestListSkipsDirectoriesAndTempFiles(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "keep.jpg", strings.NewReader("abc")))
	require.NoError(t, os.Mkdir(filepath.Join(store.Root(), "dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), tempPrefix+"123"), []byte("x"), 0o644))

	objects, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "keep.jpg", objects[0].Name)
	assert.Equal(t, int64(3), objects[0].Size)
}
