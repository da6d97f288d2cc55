// Package events 事件的事务管理与分页查询
package events

import (
	"context"
	"errors"
	"time"

	"github.com/anoixa/memory-lane/database/models"
	"github.com/anoixa/memory-lane/database/repo/events"
	"github.com/anoixa/memory-lane/database/repo/lanes"
	"github.com/anoixa/memory-lane/internal/apperr"
	"github.com/anoixa/memory-lane/internal/pagination"
	"github.com/anoixa/memory-lane/internal/reconcile"
	"github.com/anoixa/memory-lane/internal/validation"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	msgEventNotFound = "Event not found"
	msgLaneNotFound  = "Memory Lane not found"
	msgNeedsImage    = "Event must have at least one image"
)

// CreateInput 创建事件的请求
type CreateInput struct {
	MemoryLaneID string                 `json:"memoryLaneId" validate:"required,notblank"`
	Title        string                 `json:"title" validate:"required,notblank"`
	Description  string                 `json:"description" validate:"required,notblank"`
	Timestamp    string                 `json:"timestamp" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Images       []reconcile.ImageInput `json:"images" validate:"required,min=1,dive"`
}

// UpdateInput 更新事件的请求，images 为完整的目标集合
type UpdateInput struct {
	Title       string                 `json:"title" validate:"required,notblank"`
	Description string                 `json:"description" validate:"required,notblank"`
	Timestamp   string                 `json:"timestamp" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Images      []reconcile.ImageInput `json:"images" validate:"required,min=1,dive"`
}

// Validate 校验并解析时间
func (in CreateInput) Validate() (time.Time, error) {
	if err := reconcile.Check(in.Images); err != nil {
		return time.Time{}, err
	}
	if err := validation.Struct(in); err != nil {
		return time.Time{}, err
	}
	return parseTimestamp(in.Timestamp)
}

// Validate 校验并解析时间
func (in UpdateInput) Validate() (time.Time, error) {
	if err := reconcile.Check(in.Images); err != nil {
		return time.Time{}, err
	}
	if err := validation.Struct(in); err != nil {
		return time.Time{}, err
	}
	return parseTimestamp(in.Timestamp)
}

func parseTimestamp(raw string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperr.Validation("timestamp must be an ISO 8601 datetime")
	}
	return ts.UTC(), nil
}

// Page 分页查询结果
type Page struct {
	Events     []models.Event        `json:"events"`
	Pagination pagination.Pagination `json:"pagination"`
}

// Service 事件服务层
type Service struct {
	repo  *events.Repository
	lanes *lanes.Repository
}

// NewService 创建新的事件服务
func NewService(repo *events.Repository, lanes *lanes.Repository) *Service {
	return &Service{repo: repo, lanes: lanes}
}

// CreateEvent 在一个事务中创建事件及其图片
func (s *Service) CreateEvent(ctx context.Context, in CreateInput) (*models.Event, error) {
	ts, err := in.Validate()
	if err != nil {
		return nil, err
	}

	images := reconcile.Dedupe(in.Images)
	var created *models.Event

	err = s.repo.Provider().TransactionWithContext(ctx, func(tx *gorm.DB) error {
		txEvents := s.repo.WithTx(tx)

		if _, err := s.lanes.WithTx(tx).LockByID(ctx, in.MemoryLaneID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(msgLaneNotFound)
			}
			return apperr.Storage("failed to load memory lane", err)
		}

		event := &models.Event{
			Title:        in.Title,
			Description:  in.Description,
			Timestamp:    ts,
			MemoryLaneID: in.MemoryLaneID,
			Images:       reconcile.ToModels("", images, time.Now()),
		}
		if err := txEvents.Create(ctx, event); err != nil {
			return apperr.Storage("failed to create event", err)
		}

		if err := ensureHasImages(ctx, txEvents, event.ID); err != nil {
			return err
		}

		loaded, err := txEvents.GetWithImages(ctx, event.ID)
		if err != nil {
			return apperr.Storage("failed to reload event", err)
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"event_id":       created.ID,
		"memory_lane_id": created.MemoryLaneID,
		"images":         len(created.Images),
	}).Info("Event created")
	return created, nil
}

// UpdateEvent 在一个事务中更新事件字段并把图片集合调整为目标集合
func (s *Service) UpdateEvent(ctx context.Context, eventID string, in UpdateInput) (*models.Event, error) {
	ts, err := in.Validate()
	if err != nil {
		return nil, err
	}

	var updated *models.Event
	var plan reconcile.Plan

	err = s.repo.Provider().TransactionWithContext(ctx, func(tx *gorm.DB) error {
		txEvents := s.repo.WithTx(tx)

		if _, err := txEvents.LockByID(ctx, eventID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(msgEventNotFound)
			}
			return apperr.Storage("failed to load event", err)
		}

		current, err := txEvents.ListImages(ctx, eventID)
		if err != nil {
			return apperr.Storage("failed to load images", err)
		}

		plan, err = reconcile.Reconcile(current, in.Images)
		if err != nil {
			return err
		}

		if err := txEvents.DeleteImages(ctx, eventID, plan.ToDelete); err != nil {
			return apperr.Storage("failed to delete images", err)
		}
		upserts := reconcile.ToModels(eventID, plan.ToUpsert, reconcile.NextCreatedAt(current, time.Now()))
		if err := txEvents.UpsertImages(ctx, eventID, upserts); err != nil {
			return apperr.Storage("failed to upsert images", err)
		}

		fields := events.Fields{Title: in.Title, Description: in.Description, Timestamp: ts}
		if err := txEvents.UpdateFields(ctx, eventID, fields); err != nil {
			return apperr.Storage("failed to update event", err)
		}

		if err := ensureHasImages(ctx, txEvents, eventID); err != nil {
			return err
		}

		loaded, err := txEvents.GetWithImages(ctx, eventID)
		if err != nil {
			return apperr.Storage("failed to reload event", err)
		}
		updated = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"event_id": eventID,
		"deleted":  len(plan.ToDelete),
		"created":  len(plan.ToCreate),
		"kept":     len(plan.ToKeep),
	}).Info("Event updated")
	return updated, nil
}

// DeleteEvent 删除事件及其图片，事件不存在时返回 NotFound
func (s *Service) DeleteEvent(ctx context.Context, eventID string) error {
	err := s.repo.Provider().TransactionWithContext(ctx, func(tx *gorm.DB) error {
		txEvents := s.repo.WithTx(tx)

		if _, err := txEvents.LockByID(ctx, eventID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(msgEventNotFound)
			}
			return apperr.Storage("failed to load event", err)
		}

		n, err := txEvents.Delete(ctx, eventID)
		if err != nil {
			return apperr.Storage("failed to delete event", err)
		}
		if n == 0 {
			return apperr.NotFound(msgEventNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.WithField("event_id", eventID).Info("Event deleted")
	return nil
}

// GetEvent 获取事件及其图片
func (s *Service) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.repo.GetWithImages(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgEventNotFound)
		}
		return nil, apperr.Storage("failed to load event", err)
	}
	return event, nil
}

// ListEvents 分页获取时间线下的事件，超出范围的页返回空列表
func (s *Service) ListEvents(ctx context.Context, memoryLaneID string, q pagination.PageQuery) (*Page, error) {
	list, total, err := s.repo.ListByLane(ctx, memoryLaneID, q.Offset(), q.Limit, q.Desc())
	if err != nil {
		return nil, apperr.Storage("failed to list events", err)
	}

	return &Page{
		Events:     list,
		Pagination: pagination.New(total, q),
	}, nil
}

// ListAllEvents 时间线下全部事件，最新的在前
func (s *Service) ListAllEvents(ctx context.Context, memoryLaneID string) ([]models.Event, error) {
	list, err := s.repo.ListAllByLane(ctx, memoryLaneID)
	if err != nil {
		return nil, apperr.Storage("failed to list events", err)
	}
	return list, nil
}

// ensureHasImages 事务内的兜底检查，请求层的 reconcile.Check 已先拒绝空集合
func ensureHasImages(ctx context.Context, repo *events.Repository, eventID string) error {
	count, err := repo.CountImages(ctx, eventID)
	if err != nil {
		return apperr.Storage("failed to count images", err)
	}
	if count == 0 {
		return apperr.Invariant(msgNeedsImage)
	}
	return nil
}
