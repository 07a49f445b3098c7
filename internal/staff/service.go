package staff

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

// Service manages the clinic team page.
type Service interface {
	List(ctx context.Context) ([]StaffDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*StaffDTO, error)
	Create(ctx context.Context, input CreateInput) (*StaffDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*StaffDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceParams struct {
	Repository *Repository
	Files      attachments.Files
}

type service struct {
	repo  *Repository
	files attachments.Files
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("staff repository required")
	}
	if params.Files == nil {
		return nil, fmt.Errorf("attachments manager required")
	}
	return &service{repo: params.Repository, files: params.Files}, nil
}

func (s *service) List(ctx context.Context) ([]StaffDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StaffDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewStaffDTO(row, s.files))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*StaffDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewStaffDTO(*row, s.files)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*StaffDTO, error) {
	member := &models.StaffMember{
		FullName:  strings.TrimSpace(input.FullName),
		Position:  strings.TrimSpace(input.Position),
		Specialty: trimOptional(input.Specialty),
		Bio:       trimOptional(input.Bio),
	}
	if err := validate(member); err != nil {
		return nil, err
	}

	_, err := s.files.Apply(ctx, "", attachments.Change{Upload: input.Photo}, func(ref string) error {
		member.Photo = ref
		return s.repo.Create(ctx, member)
	})
	if err != nil {
		return nil, err
	}
	dto := NewStaffDTO(*member, s.files)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*StaffDTO, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.FullName != nil {
		member.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Position != nil {
		member.Position = strings.TrimSpace(*input.Position)
	}
	if input.Specialty != nil {
		member.Specialty = trimOptional(input.Specialty)
	}
	if input.Bio != nil {
		member.Bio = trimOptional(input.Bio)
	}
	if err := validate(member); err != nil {
		return nil, err
	}

	_, err = s.files.Apply(ctx, member.Photo, input.Photo, func(ref string) error {
		member.Photo = ref
		return s.repo.Update(ctx, member)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.files.Delete(ctx, func() (string, error) {
		deleted, err := s.repo.Delete(ctx, id)
		if err != nil {
			return "", err
		}
		return deleted.Photo, nil
	})
}

func validate(m *models.StaffMember) error {
	missing := []string{}
	if m.FullName == "" {
		missing = append(missing, "full_name")
	}
	if m.Position == "" {
		missing = append(missing, "position")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "required fields missing").
			WithDetails(map[string]any{"fields": missing})
	}
	return nil
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
