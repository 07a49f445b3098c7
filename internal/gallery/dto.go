package gallery

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
)

// CategoryDTO is a gallery category. Subcategories is only filled by the tree listing.
type CategoryDTO struct {
	ID            uuid.UUID     `json:"id"`
	ParentID      *uuid.UUID    `json:"parent_id,omitempty"`
	Name          string        `json:"name"`
	Description   *string       `json:"description,omitempty"`
	Image         string        `json:"image,omitempty"`
	ImageURL      string        `json:"image_url,omitempty"`
	DisplayOrder  int           `json:"display_order"`
	Subcategories []CategoryDTO `json:"subcategories,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type ImageDTO struct {
	ID           uuid.UUID `json:"id"`
	CategoryID   uuid.UUID `json:"category_id"`
	Title        *string   `json:"title,omitempty"`
	AltText      *string   `json:"alt_text,omitempty"`
	Image        string    `json:"image"`
	ImageURL     string    `json:"image_url"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateCategoryInput struct {
	ParentID    *uuid.UUID
	Name        string
	Description *string
	Image       *attachments.Upload
}

// UpdateCategoryInput holds optional mutations. ParentID re-parents the category under
// another main category; ClearParent turns a subcategory into a main category.
type UpdateCategoryInput struct {
	ParentID    *uuid.UUID
	ClearParent bool
	Name        *string
	Description *string
	Image       attachments.Change
}

type CreateImageInput struct {
	CategoryID uuid.UUID
	Title      *string
	AltText    *string
	Image      *attachments.Upload
}

type UpdateImageInput struct {
	CategoryID *uuid.UUID
	Title      *string
	AltText    *string
	Image      attachments.Change
}

func NewCategoryDTO(c models.GalleryCategory, files attachments.Files) CategoryDTO {
	return CategoryDTO{
		ID:           c.ID,
		ParentID:     c.ParentID,
		Name:         c.Name,
		Description:  c.Description,
		Image:        c.Image,
		ImageURL:     files.PublicURL(c.Image),
		DisplayOrder: c.DisplayOrder,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func NewImageDTO(img models.GalleryImage, files attachments.Files) ImageDTO {
	return ImageDTO{
		ID:           img.ID,
		CategoryID:   img.CategoryID,
		Title:        img.Title,
		AltText:      img.AltText,
		Image:        img.Image,
		ImageURL:     files.PublicURL(img.Image),
		DisplayOrder: img.DisplayOrder,
		CreatedAt:    img.CreatedAt,
		UpdatedAt:    img.UpdatedAt,
	}
}

// buildTree nests subcategories under their main category. rows must already be in
// display order; the relative order of each sibling group is kept.
func buildTree(rows []models.GalleryCategory, files attachments.Files) []CategoryDTO {
	children := make(map[uuid.UUID][]CategoryDTO)
	for _, row := range rows {
		if row.ParentID != nil {
			children[*row.ParentID] = append(children[*row.ParentID], NewCategoryDTO(row, files))
		}
	}
	roots := make([]CategoryDTO, 0)
	for _, row := range rows {
		if row.ParentID == nil {
			dto := NewCategoryDTO(row, files)
			dto.Subcategories = children[row.ID]
			roots = append(roots, dto)
		}
	}
	return roots
}
