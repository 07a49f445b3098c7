package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimelineEntry is one milestone of the clinic history page.
type TimelineEntry struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Year         int       `gorm:"column:year;not null"`
	Title        string    `gorm:"column:title;not null"`
	Description  string    `gorm:"column:description;not null;default:''"`
	Image        string    `gorm:"column:image;not null;default:''"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (TimelineEntry) TableName() string { return "timeline_entries" }

func (e *TimelineEntry) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
