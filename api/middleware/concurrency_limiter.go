package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"github.com/anoixa/memory-lane/api/common"
)

type ConcurrencyLimiter struct {
	sem *semaphore.Weighted
}

// NewConcurrencyLimiter 并发限制器
func NewConcurrencyLimiter(maxConcurrency int64) *ConcurrencyLimiter {
	if maxConcurrency <= 0 {
		maxConcurrency = 100
	}
	return &ConcurrencyLimiter{
		sem: semaphore.NewWeighted(maxConcurrency),
	}
}

// Middleware 超出并发上限立即返回 503
func (cl *ConcurrencyLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cl.sem.TryAcquire(1) {
			common.RespondErrorAbort(c, http.StatusServiceUnavailable, "Server is busy, please try again later")
			return
		}
		defer cl.sem.Release(1)

		c.Next()
	}
}

// MiddlewareWithBlock 最多等待 timeout 获取资源
func (cl *ConcurrencyLimiter) MiddlewareWithBlock(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := cl.sem.Acquire(ctx, 1); err != nil {
			common.RespondErrorAbort(c, http.StatusServiceUnavailable, "Request timed out waiting for server resources")
			return
		}
		defer cl.sem.Release(1)

		c.Next()
	}
}
