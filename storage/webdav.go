package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig WebDAV 配置结构
type WebDAVConfig struct {
	URL      string
	Username string
	Password string
	RootPath string
	Timeout  time.Duration
}

// WebDAVStorage WebDAV 存储实现
type WebDAVStorage struct {
	client   *gowebdav.Client
	rootPath string
}

// NewWebDAVStorage 创建 WebDAV 存储提供者，根目录不存在时自动创建
func NewWebDAVStorage(cfg WebDAVConfig) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, errors.New("webdav URL is required")
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	s := &WebDAVStorage{
		client:   client,
		rootPath: normalizeRootPath(cfg.RootPath),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.ensureRoot(ctx); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	return s, nil
}

func normalizeRootPath(rootPath string) string {
	rootPath = strings.Trim(rootPath, "/")
	if rootPath == "" {
		return ""
	}
	return "/" + rootPath
}

// runWithContext gowebdav 不支持 context，在 goroutine 中执行并等待取消
func runWithContext(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func (s *WebDAVStorage) ensureRoot(ctx context.Context) error {
	return runWithContext(ctx, func() error {
		if s.rootPath != "" {
			if err := s.client.MkdirAll(s.rootPath, 0755); err != nil && !isCollectionExistsError(err) {
				return err
			}
		}
		root := s.rootPath
		if root == "" {
			root = "/"
		}
		_, err := s.client.ReadDir(root)
		return err
	})
}

// fullPath 生成完整的 WebDAV 路径
func (s *WebDAVStorage) fullPath(storagePath string) string {
	storagePath = strings.TrimLeft(storagePath, "/")
	if s.rootPath != "" {
		return s.rootPath + "/" + storagePath
	}
	return "/" + storagePath
}

// ensureParentDir 逐级创建父目录
func (s *WebDAVStorage) ensureParentDir(ctx context.Context, fullPath string) error {
	parentDir := path.Dir(fullPath)
	if parentDir == "/" || parentDir == "." {
		return nil
	}

	currentPath := ""
	for _, part := range strings.Split(strings.Trim(parentDir, "/"), "/") {
		if part == "" {
			continue
		}
		currentPath = currentPath + "/" + part

		p := currentPath
		err := runWithContext(ctx, func() error {
			return s.client.Mkdir(p, os.FileMode(0755))
		})
		if err != nil && !isCollectionExistsError(err) {
			return fmt.Errorf("failed to create directory %s: %w", currentPath, err)
		}
	}

	return nil
}

// isCollectionExistsError 判断是否为目录已存在的错误
func isCollectionExistsError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	errStr := err.Error()
	for _, s := range []string{"already exists", "Conflict", "conflict", "405", "Method Not Allowed"} {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

// SaveWithContext 保存文件到 WebDAV
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, storagePath string, file io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !IsValidStoragePath(storagePath) {
		return fmt.Errorf("invalid storage path: %s", storagePath)
	}

	fullPath := s.fullPath(storagePath)
	if err := s.ensureParentDir(ctx, fullPath); err != nil {
		return fmt.Errorf("failed to ensure parent directory for %s: %w", storagePath, err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file content: %w", err)
	}

	err = runWithContext(ctx, func() error {
		return s.client.Write(fullPath, data, 0644)
	})
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", storagePath, err)
	}
	return nil
}

// GetWithContext 从 WebDAV 获取文件
func (s *WebDAVStorage) GetWithContext(ctx context.Context, storagePath string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath := s.fullPath(storagePath)

	var (
		data []byte
		info os.FileInfo
	)
	err := runWithContext(ctx, func() error {
		var err error
		if info, err = s.client.Stat(fullPath); err != nil {
			return err
		}
		data, err = s.client.Read(fullPath)
		return err
	})
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, storagePath)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", storagePath, err)
	}

	obj := &Object{
		Body:    bytesBody{bytes.NewReader(data)},
		Size:    int64(len(data)),
		ModTime: info.ModTime(),
	}
	if f, ok := info.(interface{ ContentType() string }); ok {
		obj.ContentType = f.ContentType()
	}
	return obj, nil
}

// DeleteWithContext 从 WebDAV 删除文件
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, storagePath string) error {
	exists, err := s.Exists(ctx, storagePath)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, storagePath)
	}

	fullPath := s.fullPath(storagePath)
	return runWithContext(ctx, func() error {
		return s.client.Remove(fullPath)
	})
}

// Exists 检查文件是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, storagePath string) (bool, error) {
	fullPath := s.fullPath(storagePath)

	err := runWithContext(ctx, func() error {
		_, err := s.client.Stat(fullPath)
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case gowebdav.IsErrNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// Health 检查存储健康状态
func (s *WebDAVStorage) Health(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.client == nil {
		return errors.New("webdav client is not initialized")
	}
	return s.ensureRoot(ctx)
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	return "webdav"
}
