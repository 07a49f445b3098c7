package staff

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/clinic-backend/internal/repo"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

const label = "staff member"

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StaffMember, error) {
	return repo.FindByID[models.StaffMember](ctx, r.DB(ctx), id, label)
}

// List returns the team sorted alphabetically.
func (r *Repository) List(ctx context.Context) ([]models.StaffMember, error) {
	var rows []models.StaffMember
	if err := r.DB(ctx).Order("full_name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list staff")
	}
	return rows, nil
}

func (r *Repository) Create(ctx context.Context, m *models.StaffMember) error {
	if err := r.DB(ctx).Create(m).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert staff member")
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, m *models.StaffMember) error {
	return repo.UpdateFields(ctx, r.DB(ctx), m, label)
}

// Delete removes the member and returns the deleted row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*models.StaffMember, error) {
	return repo.DeleteByID[models.StaffMember](ctx, r.DB(ctx), id, label)
}
