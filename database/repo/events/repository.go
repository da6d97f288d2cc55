package events

import (
	"context"
	"time"

	"github.com/anoixa/memory-lane/database"
	"github.com/anoixa/memory-lane/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fields 可更新的事件字段
type Fields struct {
	Title       string
	Description string
	Timestamp   time.Time
}

// Repository 事件仓库 - 事件与其图片的全部数据库操作
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的事件仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// Provider 返回底层数据库提供者
func (r *Repository) Provider() database.Provider {
	return r.db
}

// WithTx 返回绑定到事务的仓库
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: database.WithTx(r.db, tx)}
}

func orderImages(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

// Create 插入事件，Images 一并插入
func (r *Repository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// LockByID 加行锁读取事件
func (r *Repository) LockByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetWithImages 获取事件及其图片
func (r *Repository) GetWithImages(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Preload("Images", orderImages).First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if event.Images == nil {
		event.Images = []models.Image{}
	}
	return &event, nil
}

// ListImages 事件当前的图片
func (r *Repository) ListImages(ctx context.Context, eventID string) ([]models.Image, error) {
	images := []models.Image{}
	err := orderImages(r.db.WithContext(ctx).Where("event_id = ?", eventID)).Find(&images).Error
	return images, err
}

// DeleteImages 按 ID 批量删除图片
func (r *Repository) DeleteImages(ctx context.Context, eventID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("event_id = ? AND id IN ?", eventID, ids).
		Delete(&models.Image{}).Error
}

// UpsertImages 以 (event_id, url) 为冲突键插入或更新图片名称
func (r *Repository) UpsertImages(ctx context.Context, eventID string, images []models.Image) error {
	if len(images) == 0 {
		return nil
	}
	for i := range images {
		images[i].EventID = eventID
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&images).Error
}

// UpdateFields 更新标题、描述与时间
func (r *Repository) UpdateFields(ctx context.Context, id string, f Fields) error {
	return r.db.WithContext(ctx).Model(&models.Event{ID: id}).Updates(map[string]interface{}{
		"title":       f.Title,
		"description": f.Description,
		"timestamp":   f.Timestamp,
	}).Error
}

// CountImages 事件的图片数量
func (r *Repository) CountImages(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Image{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

// Delete 删除事件及其图片，返回删除的事件行数
func (r *Repository) Delete(ctx context.Context, id string) (int64, error) {
	var affected int64
	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Event{}, "id = ?", id)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

// ListByLane 分页获取时间线下的事件，按 timestamp、created_at 排序
func (r *Repository) ListByLane(ctx context.Context, laneID string, offset, limit int, desc bool) ([]models.Event, int64, error) {
	var total int64
	db := r.db.WithContext(ctx).Model(&models.Event{}).Where("memory_lane_id = ?", laneID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	events := []models.Event{}
	if int64(offset) >= total {
		return events, total, nil
	}
	err := r.db.WithContext(ctx).
		Where("memory_lane_id = ?", laneID).
		Preload("Images", orderImages).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: desc}).
		Offset(offset).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}

	return normalizeImages(events), total, nil
}

// ListAllByLane 时间线下全部事件，最新的在前
func (r *Repository) ListAllByLane(ctx context.Context, laneID string) ([]models.Event, error) {
	events := []models.Event{}
	err := r.db.WithContext(ctx).
		Where("memory_lane_id = ?", laneID).
		Preload("Images", orderImages).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return normalizeImages(events), nil
}

func normalizeImages(events []models.Event) []models.Event {
	for i := range events {
		if events[i].Images == nil {
			events[i].Images = []models.Image{}
		}
	}
	return events
}
