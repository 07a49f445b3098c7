package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is a medical service offered by the clinic.
type Service struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name            string              `gorm:"column:name;not null"`
	Description     string              `gorm:"column:description;not null;default:''"`
	Price           decimal.NullDecimal `gorm:"column:price;type:numeric(10,2)"`
	DurationMinutes *int                `gorm:"column:duration_minutes"`
	Image           string              `gorm:"column:image;not null;default:''"`
	DisplayOrder    int                 `gorm:"column:display_order;not null;default:0"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Service) TableName() string { return "services" }

func (s *Service) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
