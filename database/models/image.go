package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image 事件下的图片，(event_id, url) 唯一，作为 upsert 的冲突键
type Image struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	URL       string    `gorm:"column:url;type:varchar(700);not null;uniqueIndex:idx_image_event_url,priority:2" json:"url"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	EventID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_image_event_url,priority:1" json:"eventId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// All 返回需要迁移的全部模型，顺序满足外键依赖
func All() []interface{} {
	return []interface{}{
		&User{},
		&MemoryLane{},
		&Event{},
		&Image{},
	}
}
