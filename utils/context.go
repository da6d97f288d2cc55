package utils

import (
	"context"
	"errors"
	"strings"
	"syscall"
)

// IsContextCanceled 检查错误是否是由于上下文取消导致的
func IsContextCanceled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}

	// 部分存储 SDK 不保留错误链
	return strings.Contains(err.Error(), "context canceled")
}

// IsClientDisconnect 检查错误是否是客户端断开连接
func IsClientDisconnect(err error) bool {
	if err == nil {
		return false
	}
	if IsContextCanceled(err) {
		return true
	}
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
