package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSaveAndRemove(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root)
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Save(ctx, Upload{
		Reader:      strings.NewReader("cover-bytes"),
		Filename:    "cover.png",
		ContentType: "image/png",
	}, "covers")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/covers/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	onDisk := filepath.Join(root, strings.TrimPrefix(ref, "/uploads/"))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "cover-bytes", string(data))

	require.NoError(t, store.Remove(ctx, ref))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	// second removal is a no-op
	assert.NoError(t, store.Remove(ctx, ref))
}

func TestLocalResolveStaysInsideRoot(t *testing.T) {
	store := &Local{Root: "/srv/uploads"}

	p, err := store.resolve("/uploads/../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/srv/uploads/etc/passwd"), p)

	_, err = store.resolve("/uploads/")
	assert.Error(t, err)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpeg", extension(Upload{ContentType: "image/jpg"}))
	assert.Equal(t, "gif", extension(Upload{ContentType: "IMAGE/GIF"}))
	assert.Equal(t, "webp", extension(Upload{Filename: "a.WEBP"}))
	assert.Equal(t, "jpg", extension(Upload{}))
	assert.Equal(t, "image/jpeg", contentType(Upload{}))
}

func TestGCSObjectFromURL(t *testing.T) {
	g := &GCS{bucket: "book-covers"}

	name, ok := g.objectFromURL("https://storage.googleapis.com/book-covers/covers/a.png")
	assert.True(t, ok)
	assert.Equal(t, "covers/a.png", name)

	_, ok = g.objectFromURL("https://storage.googleapis.com/other/covers/a.png")
	assert.False(t, ok)
	_, ok = g.objectFromURL("/uploads/covers/a.png")
	assert.False(t, ok)
}
