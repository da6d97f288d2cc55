// Package dbtest 为各包测试提供独立的内存 SQLite 数据库
package dbtest

import (
	"testing"

	"github.com/anoixa/memory-lane/database"
	"github.com/anoixa/memory-lane/database/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 每个测试一个命名内存库，开启外键
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// NewProvider 返回包装了测试数据库的 Provider
func NewProvider(t testing.TB) database.Provider {
	return database.NewGormProviderFromDB(NewDB(t), "sqlite")
}
