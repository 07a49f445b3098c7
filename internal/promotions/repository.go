package promotions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/internal/repo"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

const label = "promotion"

// Repository persists promotions.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	return repo.FindByID[models.Promotion](ctx, r.DB(ctx), id, label)
}

// List returns every promotion in display order.
func (r *Repository) List(ctx context.Context) ([]models.Promotion, error) {
	return repo.ListOrdered[models.Promotion](ctx, r.DB(ctx), ordering.Global())
}

// ListVisible returns active promotions whose window contains now.
func (r *Repository) ListVisible(ctx context.Context, now time.Time) ([]models.Promotion, error) {
	var rows []models.Promotion
	err := r.DB(ctx).
		Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order(ordering.ListOrder).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list visible promotions")
	}
	return rows, nil
}

func (r *Repository) Create(ctx context.Context, p *models.Promotion) error {
	if err := r.DB(ctx).Create(p).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert promotion")
	}
	return nil
}

// Update writes content fields; display order is left to the ordering manager.
func (r *Repository) Update(ctx context.Context, p *models.Promotion) error {
	return repo.UpdateFields(ctx, r.DB(ctx), p, label)
}

// Delete removes the promotion and reports the display order it held.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	return repo.DeleteByID[models.Promotion](ctx, r.DB(ctx), id, label)
}
