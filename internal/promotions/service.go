package promotions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

// Service exposes promotion management.
type Service interface {
	ListPublic(ctx context.Context) ([]PromotionDTO, error)
	List(ctx context.Context) ([]PromotionDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PromotionDTO, error)
	Create(ctx context.Context, input CreateInput) (*PromotionDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*PromotionDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, ids []uuid.UUID) ([]PromotionDTO, error)
}

type ServiceParams struct {
	Repository *Repository
	Ordering   *ordering.Manager[models.Promotion]
	Files      attachments.Files
	Now        func() time.Time
}

type service struct {
	repo     *Repository
	ordering *ordering.Manager[models.Promotion]
	files    attachments.Files
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("promotion repository required")
	}
	if params.Ordering == nil {
		return nil, fmt.Errorf("ordering manager required")
	}
	if params.Files == nil {
		return nil, fmt.Errorf("attachments manager required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repository,
		ordering: params.Ordering,
		files:    params.Files,
		now:      now,
	}, nil
}

func (s *service) ListPublic(ctx context.Context) ([]PromotionDTO, error) {
	rows, err := s.repo.ListVisible(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return newPromotionDTOs(rows, s.files), nil
}

func (s *service) List(ctx context.Context) ([]PromotionDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return newPromotionDTOs(rows, s.files), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PromotionDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewPromotionDTO(*row, s.files)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*PromotionDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if err := validateWindow(input.StartsAt, input.EndsAt); err != nil {
		return nil, err
	}

	promotion := &models.Promotion{
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
		DiscountLabel: trimOptional(input.DiscountLabel),
		IsActive:      input.IsActive,
		StartsAt:      input.StartsAt,
		EndsAt:        input.EndsAt,
	}

	_, err := s.files.Apply(ctx, "", attachments.Change{Upload: input.Image}, func(ref string) error {
		promotion.Image = ref
		return s.ordering.Append(ctx, ordering.Global(), func(tx *gorm.DB, order int) error {
			promotion.DisplayOrder = order
			return s.repo.WithTx(tx).Create(ctx, promotion)
		})
	})
	if err != nil {
		return nil, err
	}

	dto := NewPromotionDTO(*promotion, s.files)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*PromotionDTO, error) {
	promotion, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyUpdate(promotion, input); err != nil {
		return nil, err
	}

	_, err = s.files.Apply(ctx, promotion.Image, input.Image, func(ref string) error {
		promotion.Image = ref
		return s.repo.Update(ctx, promotion)
	})
	if err != nil {
		return nil, err
	}

	// display order may have moved since the read
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

func (s *service) Reorder(ctx context.Context, ids []uuid.UUID) ([]PromotionDTO, error) {
	if err := s.ordering.Reorder(ctx, ordering.Global(), ids); err != nil {
		return nil, err
	}
	return s.List(ctx)
}

func applyUpdate(p *models.Promotion, input UpdateInput) error {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		p.Title = title
	}
	if input.Description != nil {
		p.Description = strings.TrimSpace(*input.Description)
	}
	if input.DiscountLabel != nil {
		p.DiscountLabel = trimOptional(input.DiscountLabel)
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	if input.ClearSchedule {
		p.StartsAt = nil
		p.EndsAt = nil
	}
	if input.StartsAt != nil {
		p.StartsAt = input.StartsAt
	}
	if input.EndsAt != nil {
		p.EndsAt = input.EndsAt
	}
	return validateWindow(p.StartsAt, p.EndsAt)
}

func validateWindow(startsAt, endsAt *time.Time) error {
	if startsAt != nil && endsAt != nil && endsAt.Before(*startsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "ends_at must be after starts_at").
			WithDetails(map[string]any{"starts_at": startsAt, "ends_at": endsAt})
	}
	return nil
}

// trimOptional trims v and maps blank strings to nil.
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
