package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func newLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

// TestLocalStorage_PathTraversal_Prevention 测试路径遍历防护
func TestLocalStorage_PathTraversal_Prevention(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	traversalAttempts := []string{
		"../../../etc/passwd",
		"..\\..\\..\\windows\\system32\\config\\sam",
		"../../.env",
		"..",
		".",
		"",
		"folder/../../../etc/passwd",
		"/absolute/path.jpg",
	}

	for _, attempt := range traversalAttempts {
		t.Run("save_"+attempt, func(t *testing.T) {
			err := s.SaveWithContext(ctx, attempt, strings.NewReader("x"), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid")
		})
	}

	_, err := s.GetWithContext(ctx, "../../../etc/passwd")
	assert.ErrorContains(t, err, "invalid")

	err = s.DeleteWithContext(ctx, "../../../etc/passwd")
	assert.ErrorContains(t, err, "invalid")

	_, err = s.Exists(ctx, "../x")
	assert.ErrorContains(t, err, "invalid")
}

// TestLocalStorage_SaveGetDelete 测试完整读写流程
func TestLocalStorage_SaveGetDelete(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()
	path := "events/2024/01/15/abc.png"

	require.NoError(t, s.SaveWithContext(ctx, path, bytes.NewReader(pngHeader), "image/png"))

	_, err := os.Stat(filepath.Join(s.BasePath(), "events", "2024", "01", "15", "abc.png"))
	require.NoError(t, err)

	exists, err := s.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)

	obj, err := s.GetWithContext(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.NoError(t, obj.Close())
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(len(pngHeader)), obj.Size)

	require.NoError(t, s.DeleteWithContext(ctx, path))

	exists, err = s.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestLocalStorage_NotFound 测试不存在的文件
func TestLocalStorage_NotFound(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	_, err := s.GetWithContext(ctx, "events/missing.jpg")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.DeleteWithContext(ctx, "events/missing.jpg")
	assert.True(t, errors.Is(err, ErrNotFound))
}

// TestLocalStorage_CanceledContext 取消的上下文不写入文件
func TestLocalStorage_CanceledContext(t *testing.T) {
	s := newLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.SaveWithContext(ctx, "a.jpg", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, context.Canceled)

	exists, err := s.Exists(context.Background(), "a.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestLocalStorage_ConcurrentWrites 并发写同一路径不会留下半写文件
func TestLocalStorage_ConcurrentWrites(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.SaveWithContext(ctx, "concurrent.txt", strings.NewReader("concurrent content"), ""))
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(s.BasePath(), "concurrent.txt"))
	require.NoError(t, err)
	assert.Equal(t, "concurrent content", string(data))

	entries, err := os.ReadDir(s.BasePath())
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".upload-"), "leftover temp file %s", e.Name())
	}
}

// TestLocalStorage_Health 测试健康检查
func TestLocalStorage_Health(t *testing.T) {
	s := newLocal(t)
	assert.NoError(t, s.Health(context.Background()))
	assert.Equal(t, "local", s.Name())

	require.NoError(t, os.RemoveAll(s.BasePath()))
	assert.Error(t, s.Health(context.Background()))
}

// TestIsValidStoragePath 测试存储路径校验
func TestIsValidStoragePath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantValid bool
	}{
		{"simple", "file.txt", true},
		{"nested", "events/2024/01/15/a-b_c.jpg", true},
		{"empty", "", false},
		{"dot", ".", false},
		{"dotdot", "..", false},
		{"absolute_unix", "/etc/passwd", false},
		{"absolute_windows", "C:\\file.txt", false},
		{"traversal", "../file.txt", false},
		{"null_byte", "file\x00.txt", false},
		{"newline", "file\n.txt", false},
		{"shell", "file;rm -rf.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, IsValidStoragePath(tt.path), "path: %q", tt.path)
		})
	}
}

// BenchmarkIsValidStoragePath 基准测试
func BenchmarkIsValidStoragePath(b *testing.B) {
	paths := []string{
		"normal_file.txt",
		"events/2024/01/15/file.png",
		"../../../etc/passwd",
		"",
	}

	for i := 0; i < b.N; i++ {
		for _, p := range paths {
			IsValidStoragePath(p)
		}
	}
}
