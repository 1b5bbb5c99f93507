package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"postboard/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectName(t *testing.T) {
	name := NewObjectName("PNG")
	assert.Regexp(t, regexp.MustCompile(`^posts/\d{4}/\d{2}/[0-9a-f-]{36}\.png$`), name)
	assert.NotEqual(t, name, NewObjectName(".png"))
}

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "/media")
	require.NoError(t, err)
	ctx := context.Background()

	data := []byte("GIF89a")
	require.NoError(t, store.Save(ctx, "posts/a.gif", "image/gif", bytes.NewReader(data), int64(len(data))))

	got, err := os.ReadFile(filepath.Join(root, "posts", "a.gif"))
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "/media/posts/a.gif", store.URL("posts/a.gif"))
	assert.Equal(t, "", store.URL(""))

	require.NoError(t, store.Delete(ctx, "posts/a.gif"))
	require.NoError(t, store.Delete(ctx, "posts/a.gif"))
	_, err = os.Stat(filepath.Join(root, "posts", "a.gif"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStoreStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(filepath.Join(root, "media"), "/media/")
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "../escape.gif", "image/gif", bytes.NewReader([]byte("x")), 1))
	_, err = os.Stat(filepath.Join(root, "escape.gif"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "media", "escape.gif"))
	assert.NoError(t, err)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.Storage{Backend: "ftp"})
	assert.Error(t, err)
}
