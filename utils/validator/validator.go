package validator

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/anoixa/memory-lane/utils"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrNotImage 文件不是允许的图片类型
var ErrNotImage = errors.New("file is not a supported image")

// ImageInfo 图片的类型与尺寸
type ImageInfo struct {
	MimeType  string
	Extension string
	Width     int
	Height    int
}

// InspectImage 识别文件类型并解析图片头，读取后流被重置到开头
func InspectImage(file io.ReadSeeker) (*ImageInfo, error) {
	mimeType, err := utils.SniffContentType(file)
	if err != nil {
		return nil, err
	}

	ext := utils.GetSafeExtension(mimeType)
	if ext == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, mimeType)
	}

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	return &ImageInfo{
		MimeType:  mimeType,
		Extension: ext,
		Width:     cfg.Width,
		Height:    cfg.Height,
	}, nil
}
