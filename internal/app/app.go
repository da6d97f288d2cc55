package app

import (
	"fmt"

	"github.com/anoixa/memory-lane/config"
	"github.com/anoixa/memory-lane/database"
	"github.com/anoixa/memory-lane/database/repo/events"
	"github.com/anoixa/memory-lane/database/repo/lanes"
	"github.com/anoixa/memory-lane/database/repo/users"
	"github.com/anoixa/memory-lane/internal/auth"
	svcEvents "github.com/anoixa/memory-lane/internal/events"
	svcLanes "github.com/anoixa/memory-lane/internal/lanes"
	"github.com/anoixa/memory-lane/internal/upload"
	svcUsers "github.com/anoixa/memory-lane/internal/users"
	"github.com/anoixa/memory-lane/storage"
	"github.com/anoixa/memory-lane/utils"
	log "github.com/sirupsen/logrus"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config          *config.Config
	databaseFactory *database.Factory
	storageFactory  *storage.Factory
	jwt             *auth.JWTService

	UsersRepo  *users.Repository
	LanesRepo  *lanes.Repository
	EventsRepo *events.Repository

	Users   *svcUsers.Service
	Lanes   *svcLanes.Service
	Events  *svcEvents.Service
	Uploads *upload.Service
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// Init 初始化数据库、存储与服务
func (c *Container) Init() error {
	if err := c.InitDatabase(); err != nil {
		return err
	}
	if err := c.InitServices(); err != nil {
		return err
	}
	return nil
}

// InitDatabase 初始化数据库工厂和仓库
func (c *Container) InitDatabase() error {
	utils.LogIfDev("Initializing DI container...")

	factory, err := database.NewFactory(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}
	c.UseDatabase(factory)

	utils.LogIfDev("DI container initialized successfully")
	return nil
}

// UseDatabase 使用已有数据库工厂并初始化仓库
func (c *Container) UseDatabase(factory *database.Factory) {
	c.databaseFactory = factory
	c.initRepositories()
}

// InitServices 初始化存储、会话与业务服务
func (c *Container) InitServices() error {
	if c.databaseFactory == nil {
		return fmt.Errorf("database must be initialized before services")
	}

	storageFactory, err := storage.NewFactory(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.storageFactory = storageFactory

	jwt, err := auth.NewJWTService(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize session tokens: %w", err)
	}
	c.jwt = jwt

	c.Users = svcUsers.NewService(c.UsersRepo, jwt)
	c.Lanes = svcLanes.NewService(c.LanesRepo)
	c.Events = svcEvents.NewService(c.EventsRepo, c.LanesRepo)
	c.Uploads = upload.NewService(c.config, storageFactory)

	utils.LogIfDev("Services initialized")
	return nil
}

// initRepositories 初始化所有仓库
func (c *Container) initRepositories() {
	provider := c.databaseFactory.GetProvider()
	c.UsersRepo = users.NewRepository(provider)
	c.LanesRepo = lanes.NewRepository(provider)
	c.EventsRepo = events.NewRepository(provider)
	utils.LogIfDev("Repositories initialized")
}

// GetDatabaseFactory 获取数据库工厂
func (c *Container) GetDatabaseFactory() *database.Factory {
	return c.databaseFactory
}

// GetStorageFactory 获取存储工厂
func (c *Container) GetStorageFactory() *storage.Factory {
	return c.storageFactory
}

// GetJWTService 获取会话令牌服务
func (c *Container) GetJWTService() *auth.JWTService {
	return c.jwt
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Close 关闭所有服务
func (c *Container) Close() error {
	utils.LogIfDev("Closing DI container...")

	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			log.WithError(err).Error("Error closing database factory")
			return err
		}
	}

	utils.LogIfDev("DI container closed")
	return nil
}
