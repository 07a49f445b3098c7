package timeline

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

const (
	minYear = 1900
	maxYear = 2100
)

// Service manages the clinic history timeline. Entries are shown in display order,
// which editors set explicitly and which need not follow the year.
type Service interface {
	List(ctx context.Context) ([]EntryDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*EntryDTO, error)
	Create(ctx context.Context, input CreateInput) (*EntryDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*EntryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, ids []uuid.UUID) ([]EntryDTO, error)
}

type ServiceParams struct {
	Repository *Repository
	Ordering   *ordering.Manager[models.TimelineEntry]
	Files      attachments.Files
}

type service struct {
	repo     *Repository
	ordering *ordering.Manager[models.TimelineEntry]
	files    attachments.Files
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("timeline repository required")
	}
	if params.Ordering == nil {
		return nil, fmt.Errorf("ordering manager required")
	}
	if params.Files == nil {
		return nil, fmt.Errorf("attachments manager required")
	}
	return &service{repo: params.Repository, ordering: params.Ordering, files: params.Files}, nil
}

func (s *service) List(ctx context.Context) ([]EntryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]EntryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewEntryDTO(row, s.files))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*EntryDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewEntryDTO(*row, s.files)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*EntryDTO, error) {
	entry := &models.TimelineEntry{
		Year:        input.Year,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
	}
	if err := validate(entry); err != nil {
		return nil, err
	}

	_, err := s.files.Apply(ctx, "", attachments.Change{Upload: input.Image}, func(ref string) error {
		entry.Image = ref
		return s.ordering.Append(ctx, ordering.Global(), func(tx *gorm.DB, order int) error {
			entry.DisplayOrder = order
			return s.repo.WithTx(tx).Create(ctx, entry)
		})
	})
	if err != nil {
		return nil, err
	}
	dto := NewEntryDTO(*entry, s.files)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*EntryDTO, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Year != nil {
		entry.Year = *input.Year
	}
	if input.Title != nil {
		entry.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		entry.Description = strings.TrimSpace(*input.Description)
	}
	if err := validate(entry); err != nil {
		return nil, err
	}

	_, err = s.files.Apply(ctx, entry.Image, input.Image, func(ref string) error {
		entry.Image = ref
		return s.repo.Update(ctx, entry)
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

func (s *service) Reorder(ctx context.Context, ids []uuid.UUID) ([]EntryDTO, error) {
	if err := s.ordering.Reorder(ctx, ordering.Global(), ids); err != nil {
		return nil, err
	}
	return s.List(ctx)
}

func validate(e *models.TimelineEntry) error {
	if e.Title == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if e.Year < minYear || e.Year > maxYear {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("year must be between %d and %d", minYear, maxYear)).
			WithDetails(map[string]any{"year": e.Year})
	}
	return nil
}
