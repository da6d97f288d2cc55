package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/anoixa/memory-lane/internal/apperr"
)

// ErrorResponse 错误响应体
type ErrorResponse struct {
	Error string `json:"error" example:"Event not found"`
}

// MessageResponse 只包含提示信息的响应体
type MessageResponse struct {
	Message string `json:"message" example:"Event deleted successfully"`
}

// RespondSuccess sends 200 with the resource as body.
func RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends 201 with the created resource as body.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// RespondMessage sends 200 with {"message": ...}.
func RespondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Message: message})
}

// RespondError sends an error response with message.
func RespondError(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorResponse{Error: message})
}

// RespondErrorAbort sends an error response and stops the handler chain.
func RespondErrorAbort(c *gin.Context, httpStatus int, message string) {
	c.AbortWithStatusJSON(httpStatus, ErrorResponse{Error: message})
}

// RespondAppError 将业务错误映射为状态码；内部错误只写日志，不把细节返回给客户端
func RespondAppError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"request_id": c.GetString(RequestIDKey),
		}).Error("Request failed")
	}
	_ = c.Error(err)
	RespondError(c, status, apperr.MessageOf(err))
}

// RequestIDKey gin 上下文中请求 ID 的键
const RequestIDKey = "request_id"
