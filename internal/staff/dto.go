package staff

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
)

type StaffDTO struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Position  string    `json:"position"`
	Specialty *string   `json:"specialty,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Photo     string    `json:"photo,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateInput struct {
	FullName  string
	Position  string
	Specialty *string
	Bio       *string
	Photo     *attachments.Upload
}

type UpdateInput struct {
	FullName  *string
	Position  *string
	Specialty *string
	Bio       *string
	Photo     attachments.Change
}

func NewStaffDTO(m models.StaffMember, files attachments.Files) StaffDTO {
	return StaffDTO{
		ID:        m.ID,
		FullName:  m.FullName,
		Position:  m.Position,
		Specialty: m.Specialty,
		Bio:       m.Bio,
		Photo:     m.Photo,
		PhotoURL:  files.PublicURL(m.Photo),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
