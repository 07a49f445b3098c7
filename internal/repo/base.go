package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/clinic-backend/internal/ordering"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// FindByID loads one row of T. A missing row becomes NOT_FOUND naming label.
func FindByID[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, label string) (*T, error) {
	var row T
	if err := db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, MapError(err, label)
	}
	return &row, nil
}

// ListOrdered returns the rows of T in scope sorted by display order.
func ListOrdered[T any](ctx context.Context, db *gorm.DB, scope ordering.Scope) ([]T, error) {
	var rows []T
	q := scope.Apply(db.WithContext(ctx).Model(new(T)))
	if err := q.Order(ordering.ListOrder).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list rows")
	}
	return rows, nil
}

// MapError turns gorm failures into typed errors.
func MapError(err error, label string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", label))
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("db: %s", label))
}

// UpdateFields writes every column of row except its identity, position and creation time.
// Position is owned by the ordering manager and must not be clobbered by content edits.
func UpdateFields(ctx context.Context, db *gorm.DB, row any, label string) error {
	res := db.WithContext(ctx).
		Model(row).
		Select("*").
		Omit("id", "display_order", "created_at").
		Updates(row)
	if res.Error != nil {
		return MapError(res.Error, label)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", label))
	}
	return nil
}

// DeleteByID removes one row of T and returns it as it was before the delete.
func DeleteByID[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, label string) (*T, error) {
	row, err := FindByID[T](ctx, db, id, label)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(row).Error; err != nil {
		return nil, MapError(err, label)
	}
	return row, nil
}

// SetDisplayOrder writes the position of one row of T. Only the ordering flows call it.
func SetDisplayOrder[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, order int, label string) error {
	res := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).UpdateColumn("display_order", order)
	if res.Error != nil {
		return MapError(res.Error, label)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", label))
	}
	return nil
}
