package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

// maxPrice matches the numeric(10,2) column.
var maxPrice = decimal.New(1, 8)

// Service exposes management of the clinic's medical services.
type Service interface {
	List(ctx context.Context) ([]ServiceDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ServiceDTO, error)
	Create(ctx context.Context, input CreateInput) (*ServiceDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ServiceDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, ids []uuid.UUID) ([]ServiceDTO, error)
}

type ServiceParams struct {
	Repository *Repository
	Ordering   *ordering.Manager[models.Service]
	Files      attachments.Files
}

type service struct {
	repo     *Repository
	ordering *ordering.Manager[models.Service]
	files    attachments.Files
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("service repository required")
	}
	if params.Ordering == nil {
		return nil, fmt.Errorf("ordering manager required")
	}
	if params.Files == nil {
		return nil, fmt.Errorf("attachments manager required")
	}
	return &service{repo: params.Repository, ordering: params.Ordering, files: params.Files}, nil
}

func (s *service) List(ctx context.Context) ([]ServiceDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return newServiceDTOs(rows, s.files), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ServiceDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewServiceDTO(*row, s.files)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ServiceDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if err := validateDuration(input.DurationMinutes); err != nil {
		return nil, err
	}

	record := &models.Service{
		Name:            name,
		Description:     strings.TrimSpace(input.Description),
		DurationMinutes: input.DurationMinutes,
	}
	if input.Price != nil {
		record.Price = decimal.NewNullDecimal(input.Price.Round(2))
	}

	_, err := s.files.Apply(ctx, "", attachments.Change{Upload: input.Image}, func(ref string) error {
		record.Image = ref
		return s.ordering.Append(ctx, ordering.Global(), func(tx *gorm.DB, order int) error {
			record.DisplayOrder = order
			return s.repo.WithTx(tx).Create(ctx, record)
		})
	})
	if err != nil {
		return nil, err
	}
	dto := NewServiceDTO(*record, s.files)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ServiceDTO, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyUpdate(record, input); err != nil {
		return nil, err
	}
	_, err = s.files.Apply(ctx, record.Image, input.Image, func(ref string) error {
		record.Image = ref
		return s.repo.Update(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.files.Delete(ctx, func() (string, error) {
		var ref string
		err := s.ordering.Remove(ctx, ordering.Global(), func(tx *gorm.DB) (int, error) {
			deleted, err := s.repo.WithTx(tx).Delete(ctx, id)
			if err != nil {
				return 0, err
			}
			ref = deleted.Image
			return deleted.DisplayOrder, nil
		})
		return ref, err
	})
}

func (s *service) Reorder(ctx context.Context, ids []uuid.UUID) ([]ServiceDTO, error) {
	if err := s.ordering.Reorder(ctx, ordering.Global(), ids); err != nil {
		return nil, err
	}
	return s.List(ctx)
}

func applyUpdate(record *models.Service, input UpdateInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		record.Name = name
	}
	if input.Description != nil {
		record.Description = strings.TrimSpace(*input.Description)
	}
	switch {
	case input.Price != nil:
		if err := validatePrice(input.Price); err != nil {
			return err
		}
		record.Price = decimal.NewNullDecimal(input.Price.Round(2))
	case input.ClearPrice:
		record.Price = decimal.NullDecimal{}
	}
	switch {
	case input.DurationMinutes != nil:
		if err := validateDuration(input.DurationMinutes); err != nil {
			return err
		}
		record.DurationMinutes = input.DurationMinutes
	case input.ClearDuration:
		record.DurationMinutes = nil
	}
	return nil
}

func validatePrice(price *decimal.Decimal) error {
	if price == nil {
		return nil
	}
	if price.IsNegative() || price.GreaterThanOrEqual(maxPrice) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be between 0 and 99999999.99").
			WithDetails(map[string]any{"price": price.String()})
	}
	return nil
}

func validateDuration(minutes *int) error {
	if minutes != nil && *minutes <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "duration_minutes must be positive")
	}
	return nil
}
