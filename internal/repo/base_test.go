package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.TimelineEntry{}, &models.GalleryImage{}))
	return conn
}

func TestNewBaseStoresConnection(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	assert.Same(t, db, base.db)
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	assert.Same(t, db, base.DB(nil))
}

func TestFindByIDMapsNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	entry := models.TimelineEntry{Year: 1998, Title: "Founded"}
	require.NoError(t, db.Create(&entry).Error)

	got, err := FindByID[models.TimelineEntry](ctx, db, entry.ID, "timeline entry")
	require.NoError(t, err)
	assert.Equal(t, "Founded", got.Title)

	_, err = FindByID[models.TimelineEntry](ctx, db, uuid.New(), "timeline entry")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "timeline entry not found", pkgerrors.As(err).Message())
}

func TestListOrderedFiltersScope(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	catA, catB := uuid.New(), uuid.New()

	rows := []models.GalleryImage{
		{CategoryID: catA, Image: "2.png", DisplayOrder: 1},
		{CategoryID: catA, Image: "1.png", DisplayOrder: 0},
		{CategoryID: catB, Image: "x.png", DisplayOrder: 0},
	}
	require.NoError(t, db.Create(&rows).Error)

	got, err := ListOrdered[models.GalleryImage](ctx, db, ordering.By("category_id", catA))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1.png", got[0].Image)
	assert.Equal(t, "2.png", got[1].Image)
}

func TestMapError(t *testing.T) {
	assert.NoError(t, MapError(nil, "x"))
	assert.True(t, pkgerrors.Is(MapError(gorm.ErrRecordNotFound, "x"), pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.Is(MapError(errors.New("conn reset"), "x"), pkgerrors.CodeDependency))

	typed := pkgerrors.New(pkgerrors.CodeConflict, "busy")
	assert.Same(t, typed, MapError(typed, "x"))
}

func TestUpdateFieldsKeepsDisplayOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	entry := models.TimelineEntry{Year: 2001, Title: "Old", DisplayOrder: 3}
	require.NoError(t, db.Create(&entry).Error)

	stale := entry
	stale.Title = "New"
	stale.DisplayOrder = 0
	require.NoError(t, UpdateFields(ctx, db, &stale, "timeline entry"))

	var got models.TimelineEntry
	require.NoError(t, db.First(&got, "id = ?", entry.ID).Error)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, 3, got.DisplayOrder)

	missing := models.TimelineEntry{ID: uuid.New(), Title: "ghost"}
	err := UpdateFields(ctx, db, &missing, "timeline entry")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestDeleteByIDReturnsDeletedRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	entry := models.TimelineEntry{Year: 2010, Title: "Expansion", DisplayOrder: 4}
	require.NoError(t, db.Create(&entry).Error)

	deleted, err := DeleteByID[models.TimelineEntry](ctx, db, entry.ID, "timeline entry")
	require.NoError(t, err)
	assert.Equal(t, 4, deleted.DisplayOrder)

	_, err = DeleteByID[models.TimelineEntry](ctx, db, entry.ID, "timeline entry")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestSetDisplayOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	entry := models.TimelineEntry{Year: 2001, Title: "Moved", DisplayOrder: 4}
	require.NoError(t, db.Create(&entry).Error)

	require.NoError(t, SetDisplayOrder[models.TimelineEntry](ctx, db, entry.ID, 1, "timeline entry"))
	got, err := FindByID[models.TimelineEntry](ctx, db, entry.ID, "timeline entry")
	require.NoError(t, err)
	assert.Equal(t, 1, got.DisplayOrder)

	err = SetDisplayOrder[models.TimelineEntry](ctx, db, uuid.New(), 0, "timeline entry")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}
