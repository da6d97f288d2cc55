// Package lanes 时间线查询与描述更新
package lanes

import (
	"context"
	"errors"

	"github.com/anoixa/memory-lane/database/models"
	"github.com/anoixa/memory-lane/database/repo/lanes"
	"github.com/anoixa/memory-lane/internal/apperr"
	"github.com/anoixa/memory-lane/internal/validation"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const msgLaneNotFound = "Memory lane not found"

// UpdateInput 只允许修改描述，null 表示清空
type UpdateInput struct {
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// Validate 校验更新请求
func (in UpdateInput) Validate() error {
	return validation.Struct(in)
}

// Service 时间线服务层
type Service struct {
	repo *lanes.Repository
}

// NewService 创建新的时间线服务
func NewService(repo *lanes.Repository) *Service {
	return &Service{repo: repo}
}

// GetMemoryLane 获取时间线
func (s *Service) GetMemoryLane(ctx context.Context, id string) (*models.MemoryLane, error) {
	lane, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgLaneNotFound)
		}
		return nil, apperr.Storage("failed to load memory lane", err)
	}
	return lane, nil
}

// UpdateDescription 更新时间线描述
func (s *Service) UpdateDescription(ctx context.Context, id string, in UpdateInput) (*models.MemoryLane, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	lane, err := s.repo.UpdateDescription(ctx, id, in.Description)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgLaneNotFound)
		}
		return nil, apperr.Storage("failed to update memory lane", err)
	}

	log.WithField("memory_lane_id", id).Info("Memory lane description updated")
	return lane, nil
}
