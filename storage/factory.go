package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/anoixa/memory-lane/config"
	log "github.com/sirupsen/logrus"
)

// Factory 存储工厂 - 负责创建和管理存储提供者
type Factory struct {
	providers       map[string]Provider
	defaultProvider string
}

// NewFactory 根据配置初始化所有已配置的存储提供者
// 非默认的提供者初始化失败只记录日志，默认提供者不可用时返回错误
func NewFactory(cfg *config.Config) (*Factory, error) {
	factory := &Factory{
		providers: make(map[string]Provider),
	}

	log.Info("Initializing storage providers...")

	if cfg.StorageLocalPath != "" {
		factory.register("local", func() (Provider, error) {
			return NewLocalStorage(cfg.StorageLocalPath)
		})
	}

	if cfg.StorageMinioEndpoint != "" {
		factory.register("minio", func() (Provider, error) {
			return NewMinioStorage(MinioConfig{
				Endpoint:  cfg.StorageMinioEndpoint,
				AccessKey: cfg.StorageMinioAccessKey,
				SecretKey: cfg.StorageMinioSecretKey,
				Bucket:    cfg.StorageMinioBucket,
				UseSSL:    cfg.StorageMinioUseSSL,
			})
		})
	}

	if cfg.StorageS3Bucket != "" {
		factory.register("s3", func() (Provider, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return NewS3Storage(ctx, S3Config{
				Endpoint:  cfg.StorageS3Endpoint,
				Region:    cfg.StorageS3Region,
				AccessKey: cfg.StorageS3AccessKey,
				SecretKey: cfg.StorageS3SecretKey,
				Bucket:    cfg.StorageS3Bucket,
			})
		})
	}

	if cfg.StorageWebDAVURL != "" {
		factory.register("webdav", func() (Provider, error) {
			return NewWebDAVStorage(WebDAVConfig{
				URL:      cfg.StorageWebDAVURL,
				Username: cfg.StorageWebDAVUsername,
				Password: cfg.StorageWebDAVPassword,
				RootPath: cfg.StorageWebDAVRootPath,
				Timeout:  cfg.StorageWebDAVTimeout,
			})
		})
	}

	if len(factory.providers) == 0 {
		return nil, fmt.Errorf("no storage providers were successfully initialized")
	}

	factory.defaultProvider = cfg.StorageType
	if factory.defaultProvider == "" {
		factory.defaultProvider = "local"
	}
	if _, ok := factory.providers[factory.defaultProvider]; !ok {
		return nil, fmt.Errorf("default storage type '%s' is not available", factory.defaultProvider)
	}
	log.Infof("Default storage provider set to: '%s'", factory.defaultProvider)

	return factory, nil
}

// NewFactoryWithProvider 用单个提供者构建工厂，主要用于测试
func NewFactoryWithProvider(p Provider) *Factory {
	return &Factory{
		providers:       map[string]Provider{p.Name(): p},
		defaultProvider: p.Name(),
	}
}

func (f *Factory) register(name string, build func() (Provider, error)) {
	p, err := build()
	if err != nil {
		log.WithError(err).Errorf("Failed to initialize %s storage", name)
		return
	}
	f.providers[name] = p
	log.Infof("Successfully initialized '%s' storage provider", name)
}

// Get 获取指定名称的存储提供者，name 为空时返回默认提供者
func (f *Factory) Get(name string) (Provider, error) {
	if name == "" {
		name = f.defaultProvider
	}

	provider, ok := f.providers[name]
	if !ok {
		return nil, fmt.Errorf("storage provider '%s' not found", name)
	}
	return provider, nil
}

// GetDefault 获取默认存储提供者
func (f *Factory) GetDefault() Provider {
	return f.providers[f.defaultProvider]
}

// GetDefaultName 获取默认存储提供者名称
func (f *Factory) GetDefaultName() string {
	return f.defaultProvider
}

// ListProviders 列出所有可用的存储提供者名称
func (f *Factory) ListProviders() []string {
	names := make([]string, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Health 检查所有提供者，返回每个提供者的错误 (健康为 nil)
func (f *Factory) Health(ctx context.Context) map[string]error {
	result := make(map[string]error, len(f.providers))
	for name, p := range f.providers {
		result[name] = p.Health(ctx)
	}
	return result
}
