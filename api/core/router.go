package core

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/anoixa/memory-lane/api/common"
	handlerEvents "github.com/anoixa/memory-lane/api/handler/events"
	handlerLanes "github.com/anoixa/memory-lane/api/handler/lanes"
	handlerUploads "github.com/anoixa/memory-lane/api/handler/uploads"
	handlerUsers "github.com/anoixa/memory-lane/api/handler/users"
	"github.com/anoixa/memory-lane/api/middleware"
	"github.com/anoixa/memory-lane/config"
)

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	*ServerDependencies
	Metrics         *middleware.Metrics
	AuthRateLimiter *middleware.IPRateLimiter
	APIRateLimiter  *middleware.IPRateLimiter
	UploadLimiter   *middleware.ConcurrencyLimiter
}

// RegisterRoutes 注册所有路由，所有路径都挂在 server_base_path 之下
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	base := router.Group(deps.Config.ServerBasePath)

	// 基础路由
	registerBasicRoutes(base, deps)

	// API 路由
	registerAPIRoutes(base, deps)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(base *gin.RouterGroup, deps *RouterDependencies) {
	healthHandler := NewHealthHandler(deps.DB, deps.StorageFactory)
	base.GET("/health", healthHandler.Handle)

	base.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version":   config.Version,
			"commit":    config.CommitHash,
			"buildTime": config.BuildTime,
		})
	})

	base.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	base.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(base *gin.RouterGroup, deps *RouterDependencies) {
	userHandler := handlerUsers.NewHandler(deps.Users)
	laneHandler := handlerLanes.NewHandler(deps.Lanes)
	eventHandler := handlerEvents.NewHandler(deps.Events)
	uploadHandler := handlerUploads.NewHandler(deps.Uploads)

	// 已上传文件的公开访问
	filesGroup := base.Group("/files")
	filesGroup.Use(deps.APIRateLimiter.Middleware())
	{
		filesGroup.GET("/*path", uploadHandler.ServeFile)
	}

	api := base.Group("")
	api.Use(func(context *gin.Context) { // 所有API禁止缓存
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	api.Use(deps.APIRateLimiter.Middleware())
	{
		usersGroup := api.Group("/users")
		{
			usersGroup.POST("/signup", deps.AuthRateLimiter.Middleware(), userHandler.Signup)
			usersGroup.POST("/login", deps.AuthRateLimiter.Middleware(), userHandler.Login)
			usersGroup.GET("/me", middleware.RequireSession(), userHandler.Me)
		}

		lanesGroup := api.Group("/memory-lanes")
		{
			lanesGroup.GET("/:id", laneHandler.GetMemoryLane)
			lanesGroup.PUT("/:id", laneHandler.UpdateMemoryLane)
			lanesGroup.GET("/:id/events", eventHandler.ListEvents)
			lanesGroup.GET("/:id/events/all", eventHandler.ListAllEvents)
		}

		eventsGroup := api.Group("/events")
		{
			eventsGroup.POST("", eventHandler.CreateEvent)
			eventsGroup.GET("/:eventId", eventHandler.GetEvent)
			eventsGroup.PUT("/:eventId", eventHandler.UpdateEvent)
			eventsGroup.DELETE("/:eventId", eventHandler.DeleteEvent)
		}

		api.POST("/uploads", deps.UploadLimiter.MiddlewareWithBlock(uploadQueueTimeout(deps.Config)), uploadHandler.UploadImages)
	}
}

func uploadQueueTimeout(cfg *config.Config) time.Duration {
	if cfg.UploadQueueTimeout <= 0 {
		return 30 * time.Second
	}
	return cfg.UploadQueueTimeout
}
