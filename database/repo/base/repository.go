// Package base 提供通用的 Repository 基类
package base

import (
	"context"

	"github.com/anoixa/memory-lane/database"
)

// Repository 通用仓库基类，主键为字符串 UUID
type Repository[T any] struct {
	db database.Provider
}

// NewRepository 创建新的通用仓库
func NewRepository[T any](db database.Provider) *Repository[T] {
	return &Repository[T]{db: db}
}

// Provider 返回底层数据库提供者
func (r *Repository[T]) Provider() database.Provider {
	return r.db
}

// Create 创建记录
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// GetByID 通过 ID 获取记录，不存在时返回 gorm.ErrRecordNotFound
func (r *Repository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// Delete 删除记录，返回受影响行数
func (r *Repository[T]) Delete(ctx context.Context, id string) (int64, error) {
	var entity T
	res := r.db.WithContext(ctx).Delete(&entity, "id = ?", id)
	return res.RowsAffected, res.Error
}

// Count 获取记录总数
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Count(&count).Error
	return count, err
}

// Exists 检查记录是否存在
func (r *Repository[T]) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FirstByCondition 根据条件查询第一条记录
func (r *Repository[T]) FirstByCondition(ctx context.Context, condition string, args ...interface{}) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).Where(condition, args...).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}
