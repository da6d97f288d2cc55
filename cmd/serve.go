package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/anoixa/memory-lane/api/core"
	"github.com/anoixa/memory-lane/config"
	"github.com/anoixa/memory-lane/docs"
	"github.com/anoixa/memory-lane/internal/app"
)

const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	cfg := config.Get()

	container := app.NewContainer(cfg)
	if err := container.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	InitDatabase(container)

	if err := container.InitServices(); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	sqlDB, err := container.GetDatabaseFactory().GetProvider().SQLDB()
	if err != nil {
		log.Fatalf("Failed to access database connection: %v", err)
	}

	// 创建服务器依赖
	deps := &core.ServerDependencies{
		Config:         cfg,
		DB:             sqlDB,
		StorageFactory: container.GetStorageFactory(),
		JWT:            container.GetJWTService(),
		Users:          container.Users,
		Lanes:          container.Lanes,
		Events:         container.Events,
		Uploads:        container.Uploads,
	}

	docs.SwaggerInfo.BasePath = cfg.ServerBasePath
	docs.SwaggerInfo.Version = config.Version

	// 启动gin
	server, cleanup := core.StartServer(deps)
	go func() {
		log.WithFields(log.Fields{
			"addr":      cfg.Addr(),
			"base_path": cfg.ServerBasePath,
			"version":   config.VersionString(),
		}).Info("Server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// 先停止接收请求，再释放数据库
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	if cleanup != nil {
		cleanup()
		log.Info("Cleanup tasks finished.")
	}

	if err := container.Close(); err != nil {
		log.Errorf("Error closing container: %v", err)
	}

	log.Info("Server exited successfully")
}

// InitDatabase init database using DI container
func InitDatabase(container *app.Container) {
	factory := container.GetDatabaseFactory()
	log.WithField("driver", factory.GetProvider().Name()).Info("Initializing database")

	// 自动DDL
	if err := factory.AutoMigrate(); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	log.Info("Database initialized successfully")
}
