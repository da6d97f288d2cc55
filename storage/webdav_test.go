package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/webdav"
)

// newWebDAVServer 启动内存 WebDAV 服务
func newWebDAVServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(&webdav.Handler{
		FileSystem: webdav.NewMemFS(),
		LockSystem: webdav.NewMemLS(),
	})
	t.Cleanup(srv.Close)
	return srv
}

// TestWebDAVStorageValidation 测试 WebDAV 存储配置验证
func TestWebDAVStorageValidation(t *testing.T) {
	_, err := NewWebDAVStorage(WebDAVConfig{URL: ""})
	assert.EqualError(t, err, "webdav URL is required")

	srv := newWebDAVServer(t)
	s, err := NewWebDAVStorage(WebDAVConfig{URL: srv.URL, RootPath: "/memory-lane/"})
	require.NoError(t, err)
	assert.Equal(t, "/memory-lane", s.rootPath)
	assert.NoError(t, s.Health(context.Background()))
}

// TestWebDAVStorageFullPath 测试路径生成逻辑
func TestWebDAVStorageFullPath(t *testing.T) {
	tests := []struct {
		name        string
		rootPath    string
		storagePath string
		want        string
	}{
		{"empty root path", "", "events/2024/01/15/test.jpg", "/events/2024/01/15/test.jpg"},
		{"with root path", "/images", "events/2024/01/15/test.jpg", "/images/events/2024/01/15/test.jpg"},
		{"storage path with leading slash", "", "/test.jpg", "/test.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &WebDAVStorage{rootPath: tt.rootPath}
			assert.Equal(t, tt.want, s.fullPath(tt.storagePath))
		})
	}
}

// TestWebDAVStorageRoundTrip 测试保存、读取、删除
func TestWebDAVStorageRoundTrip(t *testing.T) {
	srv := newWebDAVServer(t)
	s, err := NewWebDAVStorage(WebDAVConfig{URL: srv.URL, RootPath: "memory-lane"})
	require.NoError(t, err)

	ctx := context.Background()
	path := "events/2024/01/15/photo.png"

	require.NoError(t, s.SaveWithContext(ctx, path, bytes.NewReader(pngHeader), "image/png"))
	// 目录已存在时再次写入
	require.NoError(t, s.SaveWithContext(ctx, "events/2024/01/15/other.png", bytes.NewReader(pngHeader), "image/png"))

	exists, err := s.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)

	obj, err := s.GetWithContext(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, int64(len(pngHeader)), obj.Size)

	require.NoError(t, s.DeleteWithContext(ctx, path))

	exists, err = s.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.GetWithContext(ctx, path)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.DeleteWithContext(ctx, path), ErrNotFound))
}

// TestWebDAVStorageContextCancellation 测试上下文取消处理
func TestWebDAVStorageContextCancellation(t *testing.T) {
	s := &WebDAVStorage{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.SaveWithContext(ctx, "test.jpg", nil, ""), context.Canceled)

	_, err := s.GetWithContext(ctx, "test.jpg")
	assert.ErrorIs(t, err, context.Canceled)

	assert.ErrorIs(t, s.DeleteWithContext(ctx, "test.jpg"), context.Canceled)

	_, err = s.Exists(ctx, "test.jpg")
	assert.ErrorIs(t, err, context.Canceled)

	assert.ErrorIs(t, s.Health(ctx), context.Canceled)
}

// TestWebDAVStorageName 测试存储名称
func TestWebDAVStorageName(t *testing.T) {
	s := &WebDAVStorage{}
	assert.Equal(t, "webdav", s.Name())
}

func TestIsCollectionExistsError(t *testing.T) {
	assert.False(t, isCollectionExistsError(nil))
	assert.False(t, isCollectionExistsError(context.Canceled))
	assert.True(t, isCollectionExistsError(errors.New("Mkdir /a: 405")))
	assert.True(t, isCollectionExistsError(errors.New("409 Conflict")))
	assert.False(t, isCollectionExistsError(errors.New("401 Unauthorized")))
}
