package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GalleryCategory groups gallery images. Main categories have no parent;
// subcategories point at a main category.
type GalleryCategory struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ParentID     *uuid.UUID `gorm:"column:parent_id;type:uuid;index"`
	Name         string     `gorm:"column:name;not null"`
	Description  *string    `gorm:"column:description"`
	Image        string     `gorm:"column:image;not null;default:''"`
	DisplayOrder int        `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (GalleryCategory) TableName() string { return "gallery_categories" }

func (c *GalleryCategory) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// GalleryImage is a single picture inside a gallery category.
type GalleryImage struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID   uuid.UUID `gorm:"column:category_id;type:uuid;not null;index"`
	Title        *string   `gorm:"column:title"`
	AltText      *string   `gorm:"column:alt_text"`
	Image        string    `gorm:"column:image;not null"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (GalleryImage) TableName() string { return "gallery_images" }

func (i *GalleryImage) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
