package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
)

// ServiceDTO is a clinic service as returned to clients. Price is a fixed two-decimal string.
type ServiceDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           *string   `json:"price,omitempty"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	Image           string    `json:"image,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	DisplayOrder    int       `json:"display_order"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateInput struct {
	Name            string
	Description     string
	Price           *decimal.Decimal
	DurationMinutes *int
	Image           *attachments.Upload
}

// UpdateInput holds optional mutations. ClearPrice and ClearDuration unset the optional columns.
type UpdateInput struct {
	Name            *string
	Description     *string
	Price           *decimal.Decimal
	ClearPrice      bool
	DurationMinutes *int
	ClearDuration   bool
	Image           attachments.Change
}

func NewServiceDTO(s models.Service, files attachments.Files) ServiceDTO {
	dto := ServiceDTO{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		DurationMinutes: s.DurationMinutes,
		Image:           s.Image,
		ImageURL:        files.PublicURL(s.Image),
		DisplayOrder:    s.DisplayOrder,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if s.Price.Valid {
		price := s.Price.Decimal.StringFixed(2)
		dto.Price = &price
	}
	return dto
}

func newServiceDTOs(rows []models.Service, files attachments.Files) []ServiceDTO {
	out := make([]ServiceDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewServiceDTO(row, files))
	}
	return out
}
