package gallery

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

// ImageService manages the pictures of each gallery category. The images of one
// category form an ordered collection.
type ImageService interface {
	List(ctx context.Context, categoryID uuid.UUID) ([]ImageDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ImageDTO, error)
	Create(ctx context.Context, input CreateImageInput) (*ImageDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateImageInput) (*ImageDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, categoryID uuid.UUID, ids []uuid.UUID) ([]ImageDTO, error)
}

type ImageServiceParams struct {
	Repository *Repository
	Ordering   *ordering.Manager[models.GalleryImage]
	Files      attachments.Files
}

type imageService struct {
	repo     *Repository
	ordering *ordering.Manager[models.GalleryImage]
	files    attachments.Files
}

func NewImageService(params ImageServiceParams) (ImageService, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("gallery repository required")
	}
	if params.Ordering == nil {
		return nil, fmt.Errorf("image ordering manager required")
	}
	if params.Files == nil {
		return nil, fmt.Errorf("attachments manager required")
	}
	return &imageService{repo: params.Repository, ordering: params.Ordering, files: params.Files}, nil
}

func (s *imageService) List(ctx context.Context, categoryID uuid.UUID) ([]ImageDTO, error) {
	if _, err := s.repo.FindCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListImages(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	out := make([]ImageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewImageDTO(row, s.files))
	}
	return out, nil
}

func (s *imageService) Get(ctx context.Context, id uuid.UUID) (*ImageDTO, error) {
	row, err := s.repo.FindImage(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewImageDTO(*row, s.files)
	return &dto, nil
}

func (s *imageService) Create(ctx context.Context, input CreateImageInput) (*ImageDTO, error) {
	if input.Image == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image is required")
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	img := &models.GalleryImage{
		CategoryID: input.CategoryID,
		Title:      trimOptional(input.Title),
		AltText:    trimOptional(input.AltText),
	}

	_, err := s.files.Apply(ctx, "", attachments.Change{Upload: input.Image}, func(ref string) error {
		img.Image = ref
		return s.ordering.Append(ctx, s.ordering.ScopeOf(img.CategoryID), func(tx *gorm.DB, order int) error {
			img.DisplayOrder = order
			return s.repo.WithTx(tx).CreateImage(ctx, img)
		})
	})
	if err != nil {
		return nil, err
	}
	dto := NewImageDTO(*img, s.files)
	return &dto, nil
}

func (s *imageService) Update(ctx context.Context, id uuid.UUID, input UpdateImageInput) (*ImageDTO, error) {
	if input.Image.Clear {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gallery images cannot be cleared; delete the image instead")
	}
	img, err := s.repo.FindImage(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		img.Title = trimOptional(input.Title)
	}
	if input.AltText != nil {
		img.AltText = trimOptional(input.AltText)
	}

	fromCategory := img.CategoryID
	from := s.ordering.ScopeOf(fromCategory)
	moving := input.CategoryID != nil && *input.CategoryID != img.CategoryID
	if moving {
		if err := s.checkCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		img.CategoryID = *input.CategoryID
	}

	_, err = s.files.Apply(ctx, img.Image, input.Image, func(ref string) error {
		img.Image = ref
		if !moving {
			return s.repo.UpdateImage(ctx, img)
		}
		return s.ordering.Move(ctx, from, s.ordering.ScopeOf(img.CategoryID), func(tx *gorm.DB, order int) (int, error) {
			txRepo := s.repo.WithTx(tx)
			current, err := txRepo.FindImage(ctx, id)
			if err != nil {
				return 0, err
			}
			if current.CategoryID != fromCategory {
				return 0, errMovedConcurrently("image", id)
			}
			if err := txRepo.UpdateImage(ctx, img); err != nil {
				return 0, err
			}
			if err := txRepo.SetImageOrder(ctx, id, order); err != nil {
				return 0, err
			}
			return current.DisplayOrder, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *imageService) Delete(ctx context.Context, id uuid.UUID) error {
	img, err := s.repo.FindImage(ctx, id)
	if err != nil {
		return err
	}
	return s.files.Delete(ctx, func() (string, error) {
		var ref string
		err := s.ordering.Remove(ctx, s.ordering.ScopeOf(img.CategoryID), func(tx *gorm.DB) (int, error) {
			deleted, err := s.repo.WithTx(tx).DeleteImage(ctx, id)
			if err != nil {
				return 0, err
			}
			if deleted.CategoryID != img.CategoryID {
				return 0, errMovedConcurrently("image", id)
			}
			ref = deleted.Image
			return deleted.DisplayOrder, nil
		})
		return ref, err
	})
}

func (s *imageService) Reorder(ctx context.Context, categoryID uuid.UUID, ids []uuid.UUID) ([]ImageDTO, error) {
	if _, err := s.repo.FindCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	if err := s.ordering.Reorder(ctx, s.ordering.ScopeOf(categoryID), ids); err != nil {
		return nil, err
	}
	return s.List(ctx, categoryID)
}

func (s *imageService) checkCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category_id is required")
	}
	if _, err := s.repo.FindCategory(ctx, id); err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist").
				WithDetails(map[string]any{"category_id": id.String()})
		}
		return err
	}
	return nil
}
