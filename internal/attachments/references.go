package attachments

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

// fileColumn names a column holding attachment references.
type fileColumn struct {
	model  any
	column string
}

var fileColumns = []fileColumn{
	{&models.Promotion{}, "image"},
	{&models.Service{}, "image"},
	{&models.StaffMember{}, "photo"},
	{&models.TimelineEntry{}, "image"},
	{&models.GalleryCategory{}, "image"},
	{&models.GalleryImage{}, "image"},
}

// ReferenceIndex reports which stored files are still referenced by a record.
type ReferenceIndex struct {
	db *gorm.DB
}

func NewReferenceIndex(db *gorm.DB) (*ReferenceIndex, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &ReferenceIndex{db: db}, nil
}

// Referenced returns the union of every non-empty file reference column.
func (r *ReferenceIndex) Referenced(ctx context.Context) (map[string]struct{}, error) {
	refs := make(map[string]struct{})
	for _, fc := range fileColumns {
		var values []string
		err := r.db.WithContext(ctx).
			Model(fc.model).
			Where(fmt.Sprintf("%s <> ''", fc.column)).
			Pluck(fc.column, &values).Error
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: collect file references")
		}
		for _, v := range values {
			refs[v] = struct{}{}
		}
	}
	return refs, nil
}
