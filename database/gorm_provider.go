package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/anoixa/memory-lane/config"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GormProvider GORM 数据库提供者实现
type GormProvider struct {
	db     *gorm.DB
	dbType string
}

// NewGormProvider 根据配置创建新的 GORM 数据库提供者
func NewGormProvider(cfg *config.Config) (*GormProvider, error) {
	db, err := NewDB(cfg)
	if err != nil {
		return nil, err
	}

	dbType := strings.ToLower(cfg.DBType)
	if dbType == "" {
		dbType = "sqlite"
	}
	return &GormProvider{db: db, dbType: dbType}, nil
}

// NewGormProviderFromDB 包装已有连接
func NewGormProviderFromDB(db *gorm.DB, name string) *GormProvider {
	return &GormProvider{db: db, dbType: name}
}

// DB 返回底层 *gorm.DB 实例
func (p *GormProvider) DB() *gorm.DB {
	return p.db
}

// WithContext 返回带上下文的 *gorm.DB
func (p *GormProvider) WithContext(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

// Transaction 在事务中执行函数
func (p *GormProvider) Transaction(fn TxFunc) error {
	return p.db.Transaction(fn)
}

// TransactionWithContext 带上下文的事务执行
func (p *GormProvider) TransactionWithContext(ctx context.Context, fn TxFunc) error {
	return p.db.WithContext(ctx).Transaction(fn)
}

// AutoMigrate 自动迁移数据库结构
func (p *GormProvider) AutoMigrate(models ...interface{}) error {
	return p.db.AutoMigrate(models...)
}

// SQLDB 返回底层 sql.DB
func (p *GormProvider) SQLDB() (*sql.DB, error) {
	return p.db.DB()
}

// Ping 检查数据库连接
func (p *GormProvider) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close 关闭数据库连接
func (p *GormProvider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	log.Info("Closing database connection...")
	return sqlDB.Close()
}

// Name 返回数据库名称
func (p *GormProvider) Name() string {
	return p.dbType
}
