package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("storage: object not found")

// Object 读取到的存储对象
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	ModTime     time.Time
}

// Close 关闭对象内容流
func (o *Object) Close() error {
	if o == nil || o.Body == nil {
		return nil
	}
	return o.Body.Close()
}

// bytesBody 内存中的对象内容，支持 Seek
type bytesBody struct {
	*bytes.Reader
}

func (bytesBody) Close() error { return nil }

// Provider 存储提供者接口
// 所有后端 (local / minio / s3 / webdav) 都通过 storagePath 寻址，
// 例如 events/2024/01/15/0b1c...e9.jpg
type Provider interface {
	// SaveWithContext 保存文件到存储
	SaveWithContext(ctx context.Context, storagePath string, file io.Reader, contentType string) error

	// GetWithContext 从存储获取文件，不存在时返回 ErrNotFound
	GetWithContext(ctx context.Context, storagePath string) (*Object, error)

	// DeleteWithContext 从存储删除文件，不存在时返回 ErrNotFound
	DeleteWithContext(ctx context.Context, storagePath string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, storagePath string) (bool, error)

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}

// readerSize 尽量获取 reader 的剩余长度，未知时返回 -1
func readerSize(r io.Reader) int64 {
	switch v := r.(type) {
	case interface{ Len() int }:
		return int64(v.Len())
	case io.Seeker:
		cur, err := v.Seek(0, io.SeekCurrent)
		if err != nil {
			return -1
		}
		end, err := v.Seek(0, io.SeekEnd)
		if err != nil {
			return -1
		}
		if _, err := v.Seek(cur, io.SeekStart); err != nil {
			return -1
		}
		return end - cur
	}
	return -1
}

func defaultContentType(contentType string) string {
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
