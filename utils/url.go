package utils

import (
	"net/url"
	"strings"

	"github.com/anoixa/memory-lane/config"
)

// BuildFileURL 返回存储对象的公开访问地址
// 配置了 storage_public_base_url 时直接拼接，否则指向本服务的 /files 接口
func BuildFileURL(cfg *config.Config, storagePath string) string {
	escaped := escapePath(storagePath)
	if cfg.StoragePublicBaseURL != "" {
		return strings.TrimRight(cfg.StoragePublicBaseURL, "/") + "/" + escaped
	}
	return cfg.BaseURL() + cfg.ServerBasePath + "/files/" + escaped
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
