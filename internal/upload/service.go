package upload

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/anoixa/memory-lane/config"
	"github.com/anoixa/memory-lane/internal/apperr"
	"github.com/anoixa/memory-lane/storage"
	"github.com/anoixa/memory-lane/utils"
	"github.com/anoixa/memory-lane/utils/format"
	"github.com/anoixa/memory-lane/utils/generator"
	"github.com/anoixa/memory-lane/utils/validator"
)

// FieldName multipart 表单中文件字段名
const FieldName = "files"

// Result 单个已上传文件，可直接作为事件图片提交
type Result struct {
	URL    string `json:"url"`
	Name   string `json:"name"`
	Path   string `json:"-"`
	Width  int    `json:"-"`
	Height int    `json:"-"`
}

// Service 图片上传服务
type Service struct {
	cfg         *config.Config
	storage     *storage.Factory
	paths       *generator.PathGenerator
	maxFiles    int
	maxBytes    int64
	concurrency int
}

// NewService 创建上传服务
func NewService(cfg *config.Config, factory *storage.Factory) *Service {
	maxFiles := cfg.UploadMaxFiles
	if maxFiles <= 0 {
		maxFiles = 4
	}
	concurrency := cfg.UploadConcurrency
	if concurrency <= 0 {
		concurrency = maxFiles
	}
	return &Service{
		cfg:         cfg,
		storage:     factory,
		paths:       generator.NewPathGenerator(),
		maxFiles:    maxFiles,
		maxBytes:    cfg.UploadMaxBytes(),
		concurrency: concurrency,
	}
}

// MaxFiles 单次请求允许的文件数
func (s *Service) MaxFiles() int { return s.maxFiles }

// MaxBytes 单个文件大小上限
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Upload 校验并并发保存一批图片，任意一个失败时删除本批已保存的文件
func (s *Service) Upload(ctx context.Context, files []*multipart.FileHeader) ([]Result, error) {
	if err := s.check(files); err != nil {
		return nil, err
	}

	provider := s.storage.GetDefault()
	results := make([]Result, len(files))

	var (
		mu     sync.Mutex
		stored []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, fh := range files {
		g.Go(func() (err error) {
			defer utils.Recover(&err)

			res, err := s.save(gctx, provider, fh)
			if err != nil {
				return err
			}
			mu.Lock()
			stored = append(stored, res.Path)
			mu.Unlock()
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.cleanup(context.WithoutCancel(ctx), provider, stored)
		return nil, err
	}

	log.WithFields(log.Fields{
		"count":   len(results),
		"storage": provider.Name(),
	}).Info("Images uploaded")

	return results, nil
}

func (s *Service) check(files []*multipart.FileHeader) error {
	if len(files) == 0 {
		return apperr.Validationf("At least one file is required under the '%s' key", FieldName)
	}
	if len(files) > s.maxFiles {
		return apperr.Validationf("A maximum of %d files is allowed per upload", s.maxFiles)
	}
	for _, fh := range files {
		if fh.Size > s.maxBytes {
			return apperr.TooLarge(fmt.Sprintf("File %s exceeds the maximum size of %s",
				displayName(fh.Filename), format.HumanReadableSize(s.maxBytes)))
		}
	}
	return nil
}

func (s *Service) save(ctx context.Context, provider storage.Provider, fh *multipart.FileHeader) (*Result, error) {
	name := displayName(fh.Filename)

	src, err := fh.Open()
	if err != nil {
		return nil, apperr.Storage("failed to open uploaded file", err)
	}
	defer func() { _ = src.Close() }()

	info, err := validator.InspectImage(src)
	if err != nil {
		if errors.Is(err, validator.ErrNotImage) {
			return nil, apperr.Validationf("File %s is not a supported image", name)
		}
		return nil, apperr.Storage("failed to read uploaded file", err)
	}

	storagePath := s.paths.GenerateUploadPath(info.Extension)
	if err := provider.SaveWithContext(ctx, storagePath, src, info.MimeType); err != nil {
		if utils.IsContextCanceled(err) {
			return nil, err
		}
		log.WithError(err).WithField("path", storagePath).Error("Failed to save uploaded file")
		return nil, apperr.Storage("failed to save uploaded file", err)
	}

	return &Result{
		URL:    utils.BuildFileURL(s.cfg, storagePath),
		Name:   name,
		Path:   storagePath,
		Width:  info.Width,
		Height: info.Height,
	}, nil
}

func (s *Service) cleanup(ctx context.Context, provider storage.Provider, paths []string) {
	for _, p := range paths {
		if err := provider.DeleteWithContext(ctx, p); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.WithError(err).WithField("path", p).Warn("Failed to remove file from aborted upload")
		}
	}
}

// Open 读取已上传的文件，只允许访问上传目录下生成的路径
func (s *Service) Open(ctx context.Context, storagePath string) (*storage.Object, error) {
	storagePath = strings.TrimPrefix(storagePath, "/")
	if !s.paths.IsUploadPath(storagePath) {
		return nil, apperr.NotFound("File not found")
	}

	obj, err := s.storage.GetDefault().GetWithContext(ctx, storagePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("File not found")
		}
		return nil, apperr.Storage("failed to read file", err)
	}
	return obj, nil
}

// displayName 客户端文件名只保留最后一段
func displayName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "image"
	}
	return name
}
