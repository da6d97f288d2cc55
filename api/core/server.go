package core

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/anoixa/memory-lane/api/common"
	"github.com/anoixa/memory-lane/api/middleware"
	"github.com/anoixa/memory-lane/config"
	"github.com/anoixa/memory-lane/internal/auth"
	svcEvents "github.com/anoixa/memory-lane/internal/events"
	svcLanes "github.com/anoixa/memory-lane/internal/lanes"
	"github.com/anoixa/memory-lane/internal/upload"
	svcUsers "github.com/anoixa/memory-lane/internal/users"
	"github.com/anoixa/memory-lane/storage"
)

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	Config         *config.Config
	DB             Pinger
	StorageFactory *storage.Factory
	JWT            *auth.JWTService
	Users          *svcUsers.Service
	Lanes          *svcLanes.Service
	Events         *svcEvents.Service
	Uploads        *upload.Service
}

// 启动gin
func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := deps.Config

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 全局中间件
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	metrics := middleware.NewMetrics()
	router.Use(metrics.Middleware())

	router.Use(cors.New(corsConfig(cfg)))

	_ = router.SetTrustedProxies(nil)

	// multipart 超出部分写入临时文件
	router.MaxMultipartMemory = cfg.UploadMaxBytes()

	// 并发限制，避免内存过载
	concurrencyLimiter := middleware.NewConcurrencyLimiter(cfg.ServerMaxInFlight)
	router.Use(concurrencyLimiter.Middleware())

	// 上传单独排队，等待超时返回 503
	uploadLimiter := middleware.NewConcurrencyLimiter(cfg.UploadMaxInFlight)

	// 可选会话，只有 /users/me 强制要求
	router.Use(middleware.LoadSession(deps.JWT))

	router.NoRoute(func(c *gin.Context) {
		common.RespondError(c, http.StatusNotFound, "Route not found")
	})

	// 速率限制
	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authRateLimiter.StopCleanup()
		apiRateLimiter.StopCleanup()
	}

	RegisterRoutes(router, &RouterDependencies{
		ServerDependencies: deps,
		Metrics:            metrics,
		AuthRateLimiter:    authRateLimiter,
		APIRateLimiter:     apiRateLimiter,
		UploadLimiter:      uploadLimiter,
	})

	return router, cleanup
}

// corsConfig 未配置来源时允许任意来源，但不携带凭证
func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if origins := cfg.CorsOrigins(); len(origins) > 0 {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	} else {
		c.AllowAllOrigins = true
	}
	return c
}

// StartServer 创建 http.Server
func StartServer(deps *ServerDependencies) (*http.Server, func()) {
	cfg := deps.Config
	router, clean := setupRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
