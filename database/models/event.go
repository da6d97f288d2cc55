package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	Timestamp    time.Time `gorm:"not null;index:idx_event_lane_timestamp,priority:2" json:"timestamp"`
	MemoryLaneID string    `gorm:"type:varchar(36);not null;index:idx_event_lane_timestamp,priority:1" json:"memoryLaneId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Images 至少一张，由事务内校验保证
	Images []Image `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"images"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
