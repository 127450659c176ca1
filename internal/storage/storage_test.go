package storage

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"Faran/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/webdav"
)

func TestIsValidStoragePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"posts/abc.png", true},
		{"avatars/12.jpeg", true},
		{"", false},
		{"/etc/passwd", false},
		{"../config.yml", false},
		{"posts/../../x", false},
		{"posts/a b.png", false},
		{"posts\\a.png", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidStoragePath(tt.path))
		})
	}
}

func TestLocalStorage_SaveDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)
	ctx := context.Background()

	assert.DirExists(t, filepath.Join(dir, AvatarDir))
	assert.DirExists(t, filepath.Join(dir, PostDir))

	require.NoError(t, s.Save(ctx, PostPath("a.png"), strings.NewReader("img")))
	data, err := os.ReadFile(filepath.Join(dir, PostDir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	require.NoError(t, s.Delete(ctx, PostPath("a.png")))
	assert.NoFileExists(t, filepath.Join(dir, PostDir, "a.png"))
	// 重复删除不报错
	assert.NoError(t, s.Delete(ctx, PostPath("a.png")))
}

func TestLocalStorage_PathTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, attempt := range []string{"../../etc/passwd", "..", "", "posts/../../x.png"} {
		t.Run("save_"+attempt, func(t *testing.T) {
			err := s.Save(ctx, attempt, strings.NewReader("x"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid")
		})
	}
	err = s.Delete(ctx, "../../etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestLocalStorage_CanceledContext(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Save(ctx, PostPath("a.png"), strings.NewReader("x")), context.Canceled)
}

func TestWebDAVStorage_SaveDelete(t *testing.T) {
	root := t.TempDir()
	srv := httptest.NewServer(&webdav.Handler{
		FileSystem: webdav.Dir(root),
		LockSystem: webdav.NewMemLS(),
	})
	defer srv.Close()

	s, err := NewWebDAVStorage(config.WebDAVConfig{URL: srv.URL, RootPath: "/faran/"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "webdav", s.Name())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, AvatarPath("1.png"), strings.NewReader("avatar")))
	data, err := os.ReadFile(filepath.Join(root, "faran", AvatarDir, "1.png"))
	require.NoError(t, err)
	assert.Equal(t, "avatar", string(data))

	require.NoError(t, s.Delete(ctx, AvatarPath("1.png")))
	assert.NoFileExists(t, filepath.Join(root, "faran", AvatarDir, "1.png"))

	assert.Error(t, s.Save(ctx, "../x.png", strings.NewReader("x")))
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(config.StorageConfig{Type: "s3"})
	assert.Error(t, err)

	s, err := New(config.StorageConfig{Type: "local", Local: config.LocalConfig{Path: t.TempDir()}})
	require.NoError(t, err)
	assert.Equal(t, "local", s.Name())
}
