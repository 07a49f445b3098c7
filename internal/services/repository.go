package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/internal/repo"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

const label = "service"

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	return repo.FindByID[models.Service](ctx, r.DB(ctx), id, label)
}

func (r *Repository) List(ctx context.Context) ([]models.Service, error) {
	return repo.ListOrdered[models.Service](ctx, r.DB(ctx), ordering.Global())
}

func (r *Repository) Create(ctx context.Context, s *models.Service) error {
	if err := r.DB(ctx).Create(s).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert service")
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, s *models.Service) error {
	return repo.UpdateFields(ctx, r.DB(ctx), s, label)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	return repo.DeleteByID[models.Service](ctx, r.DB(ctx), id, label)
}
