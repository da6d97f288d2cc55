package users

import (
	"context"
	"errors"

	"github.com/anoixa/memory-lane/database"
	"github.com/anoixa/memory-lane/database/models"
	"github.com/anoixa/memory-lane/database/repo/base"
	"gorm.io/gorm"
)

// ErrEmailTaken 邮箱已被注册
var ErrEmailTaken = errors.New("email already registered")

// Repository 用户仓库
type Repository struct {
	*base.Repository[models.User]
	db database.Provider
}

// NewRepository 创建新的用户仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{
		Repository: base.NewRepository[models.User](db),
		db:         db,
	}
}

// FindByEmail 按邮箱查询用户，附带其时间线
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("MemoryLane").First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDWithLane 按 ID 查询用户，附带其时间线
func (r *Repository) FindByIDWithLane(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("MemoryLane").First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateWithMemoryLane 在同一事务中创建用户及其唯一的时间线
func (r *Repository) CreateWithMemoryLane(ctx context.Context, user *models.User, lane *models.MemoryLane) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return err
		}

		lane.UserID = user.ID
		if err := tx.Create(lane).Error; err != nil {
			return err
		}

		user.MemoryLane = lane
		return nil
	})
}
