package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/memory-lane/api/common"
	"github.com/anoixa/memory-lane/internal/auth"
)

// ContextSessionKey gin 上下文中会话的键
const ContextSessionKey = "session"

// SessionParser 解析会话令牌
type SessionParser interface {
	ParseSession(token string) (*auth.Session, error)
}

// LoadSession 解析可选的 Authorization: Bearer 头，成功时写入会话
// 没有头时直接放行；头格式错误或令牌无效返回 401
func LoadSession(parser SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
			return
		}

		session, err := parser.ParseSession(strings.TrimSpace(token))
		if err != nil {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// RequireSession 要求请求已登录
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSession(c) == nil {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		c.Next()
	}
}

// GetSession 取出当前会话，未登录返回 nil
func GetSession(c *gin.Context) *auth.Session {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*auth.Session)
	return session
}
