package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anoixa/memory-lane/config"
	"github.com/anoixa/memory-lane/database/models"
	"github.com/anoixa/memory-lane/utils"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 创建数据库连接
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dbType := strings.ToLower(cfg.DBType)
	if dbType == "" {
		dbType = "sqlite"
	}

	gormLogger := newGormLogger(cfg.DBLogQueries)

	var db *gorm.DB
	var err error

	switch dbType {
	case "sqlite", "sqlite3":
		db, err = newSQLiteDB(cfg, gormLogger)
	case "postgres", "postgresql":
		db, err = newPostgresDB(cfg, gormLogger)
	case "mysql", "mariadb":
		db, err = newMySQLDB(cfg, gormLogger)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	if err != nil {
		return nil, err
	}

	configurePool(db, cfg)

	return db, nil
}

func gormConfig(gormLogger logger.Interface) *gorm.Config {
	return &gorm.Config{
		Logger:                 gormLogger,
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
}

// newSQLiteDB 创建 SQLite 连接
func newSQLiteDB(cfg *config.Config, gormLogger logger.Interface) (*gorm.DB, error) {
	path := cfg.DBFilePath
	if path == "" {
		path = "./data/memory-lane.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// WAL 模式，开启外键以支持级联删除
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=1&_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(gormLogger))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	utils.LogIfDevf("Using SQLite database: %s", path)
	return db, nil
}

// newPostgresDB 创建 PostgreSQL 连接
func newPostgresDB(cfg *config.Config, gormLogger logger.Interface) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUsername, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(gormLogger))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	utils.LogIfDevf("Using PostgreSQL database: %s@%s:%d/%s", cfg.DBUsername, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return db, nil
}

// newMySQLDB 创建 MySQL 连接
func newMySQLDB(cfg *config.Config, gormLogger logger.Interface) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.DBUsername, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := gorm.Open(mysql.Open(dsn), gormConfig(gormLogger))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	utils.LogIfDevf("Using MySQL database: %s@%s:%d/%s", cfg.DBUsername, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return db, nil
}

// newGormLogger GORM 日志统一走 logrus
func newGormLogger(logQueries bool) logger.Interface {
	logLevel := logger.Warn
	if logQueries {
		logLevel = logger.Info
	}

	return logger.New(
		log.StandardLogger(),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// configurePool 配置连接池
func configurePool(db *gorm.DB, cfg *config.Config) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
	if cfg.DBConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)
	}
}

// AutoMigrate 自动迁移数据库结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// Transaction 执行事务
func Transaction(db *gorm.DB, fn TxFunc) error {
	return db.Transaction(fn)
}

// TransactionWithContext 带上下文的事务
func TransactionWithContext(ctx context.Context, db *gorm.DB, fn TxFunc) error {
	return db.WithContext(ctx).Transaction(fn)
}
