package models

import (
	"time"

	"github.com/angelmondragon/clinic-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a back-office account allowed to edit site content.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	FullName     string         `gorm:"column:full_name;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null"`
	IsActive     bool           `gorm:"column:is_active;not null"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// All lists every persisted model, in dependency order, for schema bootstrapping in tests
// and the SQLite development driver.
func All() []any {
	return []any{
		&User{},
		&Promotion{},
		&Service{},
		&StaffMember{},
		&TimelineEntry{},
		&GalleryCategory{},
		&GalleryImage{},
	}
}
