package gallery

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/internal/repo"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

const (
	categoryLabel = "gallery category"
	imageLabel    = "gallery image"
)

// Repository persists gallery categories and their images.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.GalleryCategory, error) {
	return repo.FindByID[models.GalleryCategory](ctx, r.DB(ctx), id, categoryLabel)
}

// ListCategories returns every category, main and sub, in display order.
func (r *Repository) ListCategories(ctx context.Context) ([]models.GalleryCategory, error) {
	return repo.ListOrdered[models.GalleryCategory](ctx, r.DB(ctx), ordering.Global())
}

// ListCategoriesIn returns the children of parent, or the main categories when parent is nil.
func (r *Repository) ListCategoriesIn(ctx context.Context, parent *uuid.UUID) ([]models.GalleryCategory, error) {
	return repo.ListOrdered[models.GalleryCategory](ctx, r.DB(ctx), ordering.By("parent_id", parent))
}

func (r *Repository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.GalleryCategory{}).Where("parent_id = ?", id).Count(&count).Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count subcategories")
	}
	return count, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *models.GalleryCategory) error {
	if err := r.DB(ctx).Create(c).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert gallery category")
	}
	return nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c *models.GalleryCategory) error {
	return repo.UpdateFields(ctx, r.DB(ctx), c, categoryLabel)
}

func (r *Repository) SetCategoryOrder(ctx context.Context, id uuid.UUID, order int) error {
	return repo.SetDisplayOrder[models.GalleryCategory](ctx, r.DB(ctx), id, order, categoryLabel)
}

// DeleteCategoryTree deletes a category with its subcategories and every image below them.
// It returns the deleted category and the file references the removed rows held.
func (r *Repository) DeleteCategoryTree(ctx context.Context, id uuid.UUID) (*models.GalleryCategory, []string, error) {
	db := r.DB(ctx)
	category, err := repo.FindByID[models.GalleryCategory](ctx, db, id, categoryLabel)
	if err != nil {
		return nil, nil, err
	}

	var children []models.GalleryCategory
	if err := db.Where("parent_id = ?", id).Find(&children).Error; err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load subcategories")
	}
	ids := []uuid.UUID{id}
	refs := []string{category.Image}
	for _, child := range children {
		ids = append(ids, child.ID)
		refs = append(refs, child.Image)
	}

	var images []models.GalleryImage
	if err := db.Where("category_id IN ?", ids).Find(&images).Error; err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category images")
	}
	for _, img := range images {
		refs = append(refs, img.Image)
	}

	if err := db.Where("category_id IN ?", ids).Delete(&models.GalleryImage{}).Error; err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete category images")
	}
	if err := db.Where("parent_id = ?", id).Delete(&models.GalleryCategory{}).Error; err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete subcategories")
	}
	if err := db.Delete(category).Error; err != nil {
		return nil, nil, repo.MapError(err, categoryLabel)
	}
	return category, refs, nil
}

func (r *Repository) FindImage(ctx context.Context, id uuid.UUID) (*models.GalleryImage, error) {
	return repo.FindByID[models.GalleryImage](ctx, r.DB(ctx), id, imageLabel)
}

func (r *Repository) ListImages(ctx context.Context, categoryID uuid.UUID) ([]models.GalleryImage, error) {
	return repo.ListOrdered[models.GalleryImage](ctx, r.DB(ctx), ordering.By("category_id", categoryID))
}

func (r *Repository) CreateImage(ctx context.Context, img *models.GalleryImage) error {
	if err := r.DB(ctx).Create(img).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert gallery image")
	}
	return nil
}

func (r *Repository) UpdateImage(ctx context.Context, img *models.GalleryImage) error {
	return repo.UpdateFields(ctx, r.DB(ctx), img, imageLabel)
}

func (r *Repository) SetImageOrder(ctx context.Context, id uuid.UUID, order int) error {
	return repo.SetDisplayOrder[models.GalleryImage](ctx, r.DB(ctx), id, order, imageLabel)
}

func (r *Repository) DeleteImage(ctx context.Context, id uuid.UUID) (*models.GalleryImage, error) {
	return repo.DeleteByID[models.GalleryImage](ctx, r.DB(ctx), id, imageLabel)
}
