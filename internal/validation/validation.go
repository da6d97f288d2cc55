// Package validation 封装 go-playground/validator，把校验失败转换为 apperr.Validation
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/anoixa/memory-lane/internal/apperr"
	"github.com/go-playground/validator/v10"
)

// RFC3339 供 datetime 标签使用
const RFC3339 = "2006-01-02T15:04:05Z07:00"

var (
	once     sync.Once
	validate *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// 错误信息中使用 json 字段名
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})

		validate = v
	})
	return validate
}

// Struct 校验结构体，返回第一个失败字段对应的可读消息
func Struct(i interface{}) error {
	err := get().Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("Invalid input")
	}
	return apperr.Validation(message(verrs[0]))
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	// 去掉顶层结构体名
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return "Invalid email address"
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "datetime":
		return fmt.Sprintf("%s must be an ISO 8601 datetime", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
