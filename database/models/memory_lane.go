package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemoryLane 每个用户唯一的一条时间线
type MemoryLane struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	UserID      string    `gorm:"type:varchar(36);uniqueIndex:idx_memory_lane_user;not null" json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Events []Event `gorm:"foreignKey:MemoryLaneID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
}

func (m *MemoryLane) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
