package timeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
)

type EntryDTO struct {
	ID           uuid.UUID `json:"id"`
	Year         int       `json:"year"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Image        string    `json:"image,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateInput struct {
	Year        int
	Title       string
	Description string
	Image       *attachments.Upload
}

type UpdateInput struct {
	Year        *int
	Title       *string
	Description *string
	Image       attachments.Change
}

func NewEntryDTO(e models.TimelineEntry, files attachments.Files) EntryDTO {
	return EntryDTO{
		ID:           e.ID,
		Year:         e.Year,
		Title:        e.Title,
		Description:  e.Description,
		Image:        e.Image,
		ImageURL:     files.PublicURL(e.Image),
		DisplayOrder: e.DisplayOrder,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
