package promotions

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
)

// PromotionDTO is the promotion payload returned to clients.
type PromotionDTO struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	DiscountLabel *string    `json:"discount_label,omitempty"`
	Image         string     `json:"image,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	IsActive      bool       `json:"is_active"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	DisplayOrder  int        `json:"display_order"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateInput holds the validated payload to create a promotion.
type CreateInput struct {
	Title         string
	Description   string
	DiscountLabel *string
	IsActive      bool
	StartsAt      *time.Time
	EndsAt        *time.Time
	Image         *attachments.Upload
}

// UpdateInput holds optional mutations. Nil fields are left unchanged.
type UpdateInput struct {
	Title         *string
	Description   *string
	DiscountLabel *string
	IsActive      *bool
	StartsAt      *time.Time
	EndsAt        *time.Time
	ClearSchedule bool
	Image         attachments.Change
}

func NewPromotionDTO(p models.Promotion, files attachments.Files) PromotionDTO {
	return PromotionDTO{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		DiscountLabel: p.DiscountLabel,
		Image:         p.Image,
		ImageURL:      files.PublicURL(p.Image),
		IsActive:      p.IsActive,
		StartsAt:      p.StartsAt,
		EndsAt:        p.EndsAt,
		DisplayOrder:  p.DisplayOrder,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func newPromotionDTOs(rows []models.Promotion, files attachments.Files) []PromotionDTO {
	out := make([]PromotionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewPromotionDTO(row, files))
	}
	return out
}
