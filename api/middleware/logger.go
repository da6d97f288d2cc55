package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/anoixa/memory-lane/api/common"
)

// RequestIDHeader 请求 ID 响应头
const RequestIDHeader = "X-Request-ID"

// RequestLogger 为每个请求分配 ID 并用 logrus 记录访问日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Set(common.RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(log.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})

		switch {
		case status >= 500:
			entry.Error("Request completed")
		case status >= 400:
			entry.Warn("Request completed")
		default:
			entry.Debug("Request completed")
		}
	}
}
