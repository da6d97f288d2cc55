package lanes

import (
	"context"

	"github.com/anoixa/memory-lane/database"
	"github.com/anoixa/memory-lane/database/models"
	"github.com/anoixa/memory-lane/database/repo/base"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 时间线仓库
type Repository struct {
	*base.Repository[models.MemoryLane]
	db database.Provider
}

// NewRepository 创建新的时间线仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{
		Repository: base.NewRepository[models.MemoryLane](db),
		db:         db,
	}
}

// WithTx 返回绑定到事务的仓库
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(database.WithTx(r.db, tx))
}

// LockByID 加行锁读取时间线（SQLite 忽略 FOR UPDATE）
func (r *Repository) LockByID(ctx context.Context, id string) (*models.MemoryLane, error) {
	var lane models.MemoryLane
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&lane, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lane, nil
}

// UpdateDescription 只更新描述字段，description 为 nil 时清空
func (r *Repository) UpdateDescription(ctx context.Context, id string, description *string) (*models.MemoryLane, error) {
	var lane *models.MemoryLane
	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		locked, err := r.WithTx(tx).LockByID(ctx, id)
		if err != nil {
			return err
		}

		if err := tx.Model(locked).Update("description", description).Error; err != nil {
			return err
		}

		lane = locked
		lane.Description = description
		return nil
	})
	return lane, err
}
