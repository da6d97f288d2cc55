package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// mimeToExtMap 允许上传的图片 MIME 类型到安全扩展名的映射
var mimeToExtMap = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// GetSafeExtension 根据MIME类型返回安全的文件扩展名
// 如果MIME类型不被允许，返回空字符串
func GetSafeExtension(mimeType string) string {
	mimeType = strings.Split(mimeType, ";")[0]
	mimeType = strings.TrimSpace(mimeType)

	if ext, ok := mimeToExtMap[mimeType]; ok {
		return ext
	}
	return ""
}

// IsAllowedImage 判断 MIME 是否为允许的图片类型
func IsAllowedImage(mimeType string) bool {
	return GetSafeExtension(mimeType) != ""
}

// SniffContentType 通过文件头识别类型，读取后将流重置到开头
func SniffContentType(stream io.ReadSeeker) (string, error) {
	mt, err := mimetype.DetectReader(stream)
	if err != nil {
		return "", fmt.Errorf("failed to read stream for mime sniffing: %w", err)
	}

	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to seek stream back to start after sniffing: %w", err)
	}

	return mt.String(), nil
}
