package timeline

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/internal/repo"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

const label = "timeline entry"

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TimelineEntry, error) {
	return repo.FindByID[models.TimelineEntry](ctx, r.DB(ctx), id, label)
}

func (r *Repository) List(ctx context.Context) ([]models.TimelineEntry, error) {
	return repo.ListOrdered[models.TimelineEntry](ctx, r.DB(ctx), ordering.Global())
}

func (r *Repository) Create(ctx context.Context, e *models.TimelineEntry) error {
	if err := r.DB(ctx).Create(e).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert timeline entry")
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, e *models.TimelineEntry) error {
	return repo.UpdateFields(ctx, r.DB(ctx), e, label)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*models.TimelineEntry, error) {
	return repo.DeleteByID[models.TimelineEntry](ctx, r.DB(ctx), id, label)
}
