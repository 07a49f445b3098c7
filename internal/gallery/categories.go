package gallery

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

// CategoryService manages the two-level gallery category tree. Each sibling group
// (main categories, or the subcategories of one main category) is its own ordered collection.
type CategoryService interface {
	Tree(ctx context.Context) ([]CategoryDTO, error)
	List(ctx context.Context, parentID *uuid.UUID) ([]CategoryDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	Create(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, parentID *uuid.UUID, ids []uuid.UUID) ([]CategoryDTO, error)
}

type CategoryServiceParams struct {
	Repository *Repository
	Ordering   *ordering.Manager[models.GalleryCategory]
	Files      attachments.Files
}

type categoryService struct {
	repo     *Repository
	ordering *ordering.Manager[models.GalleryCategory]
	files    attachments.Files
}

func NewCategoryService(params CategoryServiceParams) (CategoryService, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("gallery repository required")
	}
	if params.Ordering == nil {
		return nil, fmt.Errorf("category ordering manager required")
	}
	if params.Files == nil {
		return nil, fmt.Errorf("attachments manager required")
	}
	return &categoryService{repo: params.Repository, ordering: params.Ordering, files: params.Files}, nil
}

func (s *categoryService) Tree(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return buildTree(rows, s.files), nil
}

func (s *categoryService) List(ctx context.Context, parentID *uuid.UUID) ([]CategoryDTO, error) {
	if parentID != nil {
		if _, err := s.repo.FindCategory(ctx, *parentID); err != nil {
			return nil, err
		}
	}
	rows, err := s.repo.ListCategoriesIn(ctx, parentID)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewCategoryDTO(row, s.files))
	}
	return out, nil
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	row, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewCategoryDTO(*row, s.files)
	return &dto, nil
}

func (s *categoryService) Create(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	category := &models.GalleryCategory{
		ParentID:    input.ParentID,
		Name:        strings.TrimSpace(input.Name),
		Description: trimOptional(input.Description),
	}
	if category.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := s.checkParent(ctx, uuid.Nil, input.ParentID); err != nil {
		return nil, err
	}

	_, err := s.files.Apply(ctx, "", attachments.Change{Upload: input.Image}, func(ref string) error {
		category.Image = ref
		return s.ordering.Append(ctx, s.ordering.ScopeOf(category.ParentID), func(tx *gorm.DB, order int) error {
			category.DisplayOrder = order
			return s.repo.WithTx(tx).CreateCategory(ctx, category)
		})
	})
	if err != nil {
		return nil, err
	}
	dto := NewCategoryDTO(*category, s.files)
	return &dto, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		category.Name = name
	}
	if input.Description != nil {
		category.Description = trimOptional(input.Description)
	}

	from := s.ordering.ScopeOf(category.ParentID)
	target := category.ParentID
	switch {
	case input.ParentID != nil:
		target = input.ParentID
	case input.ClearParent:
		target = nil
	}
	to := s.ordering.ScopeOf(target)
	moving := from.String() != to.String()
	if moving {
		if err := s.checkParent(ctx, id, target); err != nil {
			return nil, err
		}
		if target != nil {
			children, err := s.repo.CountChildren(ctx, id)
			if err != nil {
				return nil, err
			}
			if children > 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "a category with subcategories cannot become a subcategory")
			}
		}
		category.ParentID = target
	}

	_, err = s.files.Apply(ctx, category.Image, input.Image, func(ref string) error {
		category.Image = ref
		if !moving {
			return s.repo.UpdateCategory(ctx, category)
		}
		return s.ordering.Move(ctx, from, to, func(tx *gorm.DB, order int) (int, error) {
			txRepo := s.repo.WithTx(tx)
			current, err := txRepo.FindCategory(ctx, id)
			if err != nil {
				return 0, err
			}
			if s.ordering.ScopeOf(current.ParentID).String() != from.String() {
				return 0, errMovedConcurrently("category", id)
			}
			if err := txRepo.UpdateCategory(ctx, category); err != nil {
				return 0, err
			}
			if err := txRepo.SetCategoryOrder(ctx, id, order); err != nil {
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

// Delete removes the category, its subcategories and all their images, then their files.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return err
	}
	var refs []string
	err = s.ordering.Remove(ctx, s.ordering.ScopeOf(category.ParentID), func(tx *gorm.DB) (int, error) {
		deleted, removed, err := s.repo.WithTx(tx).DeleteCategoryTree(ctx, id)
		if err != nil {
			return 0, err
		}
		if s.ordering.ScopeOf(deleted.ParentID).String() != s.ordering.ScopeOf(category.ParentID).String() {
			return 0, errMovedConcurrently("category", id)
		}
		refs = removed
		return deleted.DisplayOrder, nil
	})
	if err != nil {
		return err
	}
	s.files.DeleteFiles(ctx, refs)
	return nil
}

func (s *categoryService) Reorder(ctx context.Context, parentID *uuid.UUID, ids []uuid.UUID) ([]CategoryDTO, error) {
	if parentID != nil {
		if _, err := s.repo.FindCategory(ctx, *parentID); err != nil {
			return nil, err
		}
	}
	if err := s.ordering.Reorder(ctx, s.ordering.ScopeOf(parentID), ids); err != nil {
		return nil, err
	}
	return s.List(ctx, parentID)
}

// checkParent enforces the two-level hierarchy: a parent must exist and be a main category.
func (s *categoryService) checkParent(ctx context.Context, self uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == self {
		return pkgerrors.New(pkgerrors.CodeValidation, "a category cannot be its own parent")
	}
	parent, err := s.repo.FindCategory(ctx, *parentID)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "parent category does not exist").
				WithDetails(map[string]any{"parent_id": parentID.String()})
		}
		return err
	}
	if parent.ParentID != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subcategories cannot have subcategories").
			WithDetails(map[string]any{"parent_id": parentID.String()})
	}
	return nil
}

// errMovedConcurrently reports a row that changed collection between the read and the
// locked write; the transaction rolls back and the caller can retry.
func errMovedConcurrently(kind string, id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeConflict, kind+" was moved by another request, retry").
		WithDetails(map[string]any{"id": id.String()})
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
