package utils

import (
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// SafeGo 拦截 panic 的 goroutine
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				log.WithField("stack", string(debug.Stack())).Errorf("[SafeGo] panic recovered: %v", err)
			}
		}()
		fn()
	}()
}

// Recover 在 errgroup 等场景下把 panic 转换成 error
func Recover(errp *error) {
	if r := recover(); r != nil {
		log.WithField("stack", string(debug.Stack())).Errorf("[Recover] panic recovered: %v", r)
		if errp != nil && *errp == nil {
			*errp = &PanicError{Value: r}
		}
	}
}

// PanicError 包装 recover 得到的值
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return "panic recovered in goroutine"
}
