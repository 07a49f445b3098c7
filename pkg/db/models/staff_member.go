package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaffMember is a doctor or clinic employee listed on the team page.
type StaffMember struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	FullName  string    `gorm:"column:full_name;not null"`
	Position  string    `gorm:"column:position;not null"`
	Specialty *string   `gorm:"column:specialty"`
	Bio       *string   `gorm:"column:bio"`
	Photo     string    `gorm:"column:photo;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (StaffMember) TableName() string { return "staff" }

func (s *StaffMember) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
