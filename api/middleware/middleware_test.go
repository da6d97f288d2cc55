package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoixa/memory-lane/api/common"
	"github.com/anoixa/memory-lane/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *auth.JWTService {
	return auth.NewJWTServiceWithConfig(auth.TokenConfig{
		Secret:    []byte(strings.Repeat("s", 32)),
		ExpiresIn: time.Hour,
	})
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- 测试会话中间件 ---

func TestSessionMiddleware(t *testing.T) {
	jwt := newJWT()
	token, _, err := jwt.Issue(auth.Session{UserID: "u1", Email: "a@b.co", MemoryLaneID: "l1"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(LoadSession(jwt))
	r.GET("/optional", func(c *gin.Context) {
		s := GetSession(c)
		if s == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, s.UserID)
	})
	r.GET("/required", RequireSession(), func(c *gin.Context) {
		c.String(http.StatusOK, GetSession(c).MemoryLaneID)
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"no header optional", "/optional", "", http.StatusOK, "anonymous"},
		{"valid token optional", "/optional", "Bearer " + token, http.StatusOK, "u1"},
		{"lowercase scheme", "/optional", "bearer " + token, http.StatusOK, "u1"},
		{"no header required", "/required", "", http.StatusUnauthorized, `{"error":"Authentication required"}`},
		{"valid token required", "/required", "Bearer " + token, http.StatusOK, "l1"},
		{"bad scheme", "/optional", "Basic abc", http.StatusUnauthorized, `{"error":"Authorization header must be 'Bearer <token>'"}`},
		{"bad token", "/optional", "Bearer nope", http.StatusUnauthorized, `{"error":"Invalid or expired token"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := map[string]string{}
			if tt.header != "" {
				header["Authorization"] = tt.header
			}
			w := do(r, http.MethodGet, tt.path, header)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}

// --- 测试限流 ---

func TestIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(0.001, 2, time.Minute)
	defer rl.StopCleanup()

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/", nil).Code)

	w := do(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())

	// 不同客户端使用独立的令牌桶
	assert.True(t, rl.Allow("10.0.0.2"))
	rl.StopCleanup()
}

// --- 测试并发限制 ---

func TestConcurrencyLimiter(t *testing.T) {
	cl := NewConcurrencyLimiter(1)
	entered := make(chan struct{})
	release := make(chan struct{})

	r := gin.New()
	r.Use(cl.Middleware())
	r.GET("/slow", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	done := make(chan int)
	go func() {
		done <- do(r, http.MethodGet, "/slow", nil).Code
	}()
	<-entered

	w := do(r, http.MethodGet, "/fast", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/fast", nil).Code)
}

func TestConcurrencyLimiter_WithBlock(t *testing.T) {
	cl := NewConcurrencyLimiter(1)
	entered := make(chan struct{})
	release := make(chan struct{})

	r := gin.New()
	r.POST("/slow", cl.MiddlewareWithBlock(time.Second), func(c *gin.Context) {
		entered <- struct{}{}
		<-release
		c.Status(http.StatusOK)
	})
	r.POST("/fast", cl.MiddlewareWithBlock(20*time.Millisecond), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := make(chan int)
	go func() {
		first <- do(r, http.MethodPost, "/slow", nil).Code
	}()
	<-entered

	// 等待超时
	w := do(r, http.MethodPost, "/fast", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Request timed out waiting for server resources")

	// 排队的请求在资源释放后继续执行
	second := make(chan int)
	go func() {
		second <- do(r, http.MethodPost, "/slow", nil).Code
	}()
	time.Sleep(20 * time.Millisecond)
	release <- struct{}{}
	assert.Equal(t, http.StatusOK, <-first)
	<-entered
	release <- struct{}{}
	assert.Equal(t, http.StatusOK, <-second)
}

// --- 测试指标与日志 ---

func TestMetricsAndRequestLogger(t *testing.T) {
	m := NewMetrics()

	r := gin.New()
	r.Use(RequestLogger(), m.Middleware())
	r.GET("/events/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(common.RequestIDKey))
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := do(r, http.MethodGet, "/events/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	w = do(r, http.MethodGet, "/events/2", map[string]string{RequestIDHeader: "req-123"})
	assert.Equal(t, "req-123", w.Body.String())

	w = do(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `memory_lane_http_requests_total{method="GET",route="/events/:id",status="200"} 2`)
	assert.Contains(t, string(body), "memory_lane_http_request_duration_seconds")
}
