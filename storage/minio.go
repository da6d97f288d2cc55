package storage

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// MinioConfig MinIO 配置
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStorage MinIO 对象存储实现
type MinioStorage struct {
	client *minio.Client
	bucket string
}

// mustGetSystemCertPool 获取系统证书池
func mustGetSystemCertPool() *x509.CertPool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		log.Warnf("Failed to load system cert pool: %v", err)
		return x509.NewCertPool()
	}
	return pool
}

func newMinioTransport(useSSL bool) *http.Transport {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 10 * time.Second,
		DisableCompression:    true,
	}

	if useSSL {
		transport.TLSClientConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
		if f := os.Getenv("SSL_CERT_FILE"); f != "" {
			rootCAs := mustGetSystemCertPool()
			if data, err := os.ReadFile(f); err == nil {
				rootCAs.AppendCertsFromPEM(data)
			}
			transport.TLSClientConfig.RootCAs = rootCAs
		}
	}
	return transport
}

// NewMinioStorage 创建 MinIO 存储提供者，bucket 不存在时自动创建
func NewMinioStorage(cfg MinioConfig) (*MinioStorage, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("minio bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: newMinioTransport(cfg.UseSSL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket '%s' exists: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket '%s': %w", cfg.Bucket, err)
		}
		log.Infof("Successfully created bucket: %s", cfg.Bucket)
	}

	return &MinioStorage{client: client, bucket: cfg.Bucket}, nil
}

func isMinioNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// SaveWithContext 上传对象
func (s *MinioStorage) SaveWithContext(ctx context.Context, storagePath string, file io.Reader, contentType string) error {
	if !IsValidStoragePath(storagePath) {
		return fmt.Errorf("invalid storage path: %s", storagePath)
	}

	_, err := s.client.PutObject(ctx, s.bucket, storagePath, file, readerSize(file), minio.PutObjectOptions{
		ContentType: defaultContentType(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object '%s' to minio: %w", storagePath, err)
	}
	return nil
}

// GetWithContext 读取对象
func (s *MinioStorage) GetWithContext(ctx context.Context, storagePath string) (*Object, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, storagePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object stream from minio for '%s': %w", storagePath, err)
	}

	// GetObject 是惰性的，Stat 才会真正发起请求
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isMinioNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, storagePath)
		}
		return nil, fmt.Errorf("failed to stat object '%s': %w", storagePath, err)
	}

	return &Object{
		Body:        obj,
		ContentType: info.ContentType,
		Size:        info.Size,
		ModTime:     info.LastModified,
	}, nil
}

// DeleteWithContext 删除对象
func (s *MinioStorage) DeleteWithContext(ctx context.Context, storagePath string) error {
	exists, err := s.Exists(ctx, storagePath)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, storagePath)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, storagePath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object '%s' from minio: %w", storagePath, err)
	}
	return nil
}

// Exists 检查对象是否存在
func (s *MinioStorage) Exists(ctx context.Context, storagePath string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, storagePath, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object '%s': %w", storagePath, err)
	}
	return true, nil
}

// Health 检查 bucket 可达
func (s *MinioStorage) Health(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket '%s' does not exist", s.bucket)
	}
	return nil
}

// Name 返回存储名称
func (s *MinioStorage) Name() string {
	return "minio"
}
