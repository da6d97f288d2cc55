package generator

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadPrefix 上传图片的存储前缀
const UploadPrefix = "events"

// PathGenerator 分层路径生成器
type PathGenerator struct {
	prefix string
	now    func() time.Time
}

// NewPathGenerator 创建路径生成器
func NewPathGenerator() *PathGenerator {
	return &PathGenerator{prefix: UploadPrefix, now: time.Now}
}

// GenerateUploadPath 生成 events/2024/01/15/<uuid>.jpg 形式的存储路径
func (pg *PathGenerator) GenerateUploadPath(ext string) string {
	return pg.GenerateUploadPathAt(ext, pg.now())
}

// GenerateUploadPathAt 指定时间生成存储路径
func (pg *PathGenerator) GenerateUploadPathAt(ext string, t time.Time) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s/%s/%s%s", pg.prefix, t.UTC().Format("2006/01/02"), uuid.NewString(), ext)
}

// IsUploadPath 校验路径是否由 GenerateUploadPath 生成，防止目录穿越
func (pg *PathGenerator) IsUploadPath(p string) bool {
	if p == "" || strings.Contains(p, "..") || strings.Contains(p, "\\") {
		return false
	}
	if path.Clean(p) != p {
		return false
	}
	parts := strings.Split(p, "/")
	if len(parts) != 5 || parts[0] != pg.prefix {
		return false
	}
	if _, err := time.Parse("2006/01/02", strings.Join(parts[1:4], "/")); err != nil {
		return false
	}
	name := parts[4]
	ext := path.Ext(name)
	_, err := uuid.Parse(strings.TrimSuffix(name, ext))
	return err == nil
}

// GenerateRandomToken 生成 n 字节的十六进制随机串
func GenerateRandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
