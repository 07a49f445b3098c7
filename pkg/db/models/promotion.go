package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Promotion is a time-boxed offer shown on the clinic landing page.
type Promotion struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Title         string     `gorm:"column:title;not null"`
	Description   string     `gorm:"column:description;not null;default:''"`
	DiscountLabel *string    `gorm:"column:discount_label"`
	Image         string     `gorm:"column:image;not null;default:''"`
	IsActive      bool       `gorm:"column:is_active;not null"`
	StartsAt      *time.Time `gorm:"column:starts_at"`
	EndsAt        *time.Time `gorm:"column:ends_at"`
	DisplayOrder  int        `gorm:"column:display_order;not null;default:0"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Promotion) TableName() string { return "promotions" }

func (p *Promotion) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
