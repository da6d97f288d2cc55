// Package apperr 定义业务层错误类型，由 HTTP 层统一映射为状态码
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误类别
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindInvariant
	KindConflict
	KindStorage
	KindTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvariant:
		return "invariant"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	case KindTooLarge:
		return "too_large"
	default:
		return "unknown"
	}
}

// Error 业务错误，Message 面向调用方，Err 为内部原因
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Validationf(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Invariant(msg string) error {
	return &Error{Kind: KindInvariant, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// TooLarge 请求体或文件超出限制
func TooLarge(msg string) error {
	return &Error{Kind: KindTooLarge, Message: msg}
}

// Storage 包装持久化层错误，原始错误不会返回给客户端
func Storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// KindOf 返回错误类别，非 *Error 视为 KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf 返回可以展示给客户端的消息
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindStorage, KindUnknown:
			return "Internal server error"
		default:
			return e.Message
		}
	}
	return "Internal server error"
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsInvariant(err error) bool  { return KindOf(err) == KindInvariant }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsStorage(err error) bool    { return KindOf(err) == KindStorage }
func IsTooLarge(err error) bool   { return KindOf(err) == KindTooLarge }

// HTTPStatus 错误类别到 HTTP 状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvariant, KindConflict:
		return http.StatusConflict
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
