package gallery

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

func TestCategorySiblingGroupsAreOrderedIndependently(t *testing.T) {
	f := newFixture(t)

	facilities := f.category(t, "Instalaciones", nil)
	team := f.category(t, "Equipo", nil)
	rooms := f.category(t, "Consultorios", &facilities.ID)
	lab := f.category(t, "Laboratorio", &facilities.ID)

	assert.Equal(t, 0, facilities.DisplayOrder)
	assert.Equal(t, 1, team.DisplayOrder)
	assert.Equal(t, 0, rooms.DisplayOrder)
	assert.Equal(t, 1, lab.DisplayOrder)

	tree, err := f.categories.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "Instalaciones", tree[0].Name)
	assert.Equal(t, []string{"Consultorios", "Laboratorio"}, names(tree[0].Subcategories))
	assert.Empty(t, tree[1].Subcategories)
}

func TestCategoryDepthIsLimitedToTwo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.category(t, "Instalaciones", nil)
	sub := f.category(t, "Consultorios", &root.ID)

	_, err := f.categories.Create(ctx, CreateCategoryInput{Name: "Sala 1", ParentID: &sub.ID})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	missing := uuid.New()
	_, err = f.categories.Create(ctx, CreateCategoryInput{Name: "Huérfana", ParentID: &missing})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	other := f.category(t, "Equipo", nil)
	_, err = f.categories.Update(ctx, root.ID, UpdateCategoryInput{ParentID: &other.ID})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "a main category with children cannot move under another")

	_, err = f.categories.Update(ctx, other.ID, UpdateCategoryInput{ParentID: &other.ID})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestCategoryReorderWithinParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.category(t, "Instalaciones", nil)
	a := f.category(t, "A", &root.ID)
	b := f.category(t, "B", &root.ID)
	c := f.category(t, "C", &root.ID)

	list, err := f.categories.Reorder(ctx, &root.ID, []uuid.UUID{c.ID, a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, names(list))

	_, err = f.categories.Reorder(ctx, nil, []uuid.UUID{a.ID})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound), "subcategories are not part of the main collection")

	list, err = f.categories.List(ctx, &root.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, names(list))
}

func TestCategoryMoveBetweenParentsKeepsBothDense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.category(t, "Instalaciones", nil)
	second := f.category(t, "Eventos", nil)
	a := f.category(t, "A", &first.ID)
	b := f.category(t, "B", &first.ID)
	f.category(t, "X", &second.ID)

	moved, err := f.categories.Update(ctx, a.ID, UpdateCategoryInput{ParentID: &second.ID, Name: strPtr("A2")})
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, second.ID, *moved.ParentID)
	assert.Equal(t, 1, moved.DisplayOrder)
	assert.Equal(t, "A2", moved.Name)

	left, err := f.categories.List(ctx, &first.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, b.ID, left[0].ID)
	assert.Equal(t, 0, left[0].DisplayOrder)

	promoted, err := f.categories.Update(ctx, b.ID, UpdateCategoryInput{ClearParent: true})
	require.NoError(t, err)
	assert.Nil(t, promoted.ParentID)
	assert.Equal(t, 2, promoted.DisplayOrder)
}

func TestCategoryDeleteCascadesRowsAndFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root, err := f.categories.Create(ctx, CreateCategoryInput{Name: "Instalaciones", Image: webpUpload("cover.webp")})
	require.NoError(t, err)
	keep := f.category(t, "Equipo", nil)
	sub := f.category(t, "Consultorios", &root.ID)
	rootImg := f.image(t, root.ID, "fachada")
	subImg := f.image(t, sub.ID, "sala")
	keepImg := f.image(t, keep.ID, "doctores")

	require.NoError(t, f.categories.Delete(ctx, root.ID))

	for _, ref := range []string{root.Image, rootImg.Image, subImg.Image} {
		assert.False(t, f.fileExists(t, ref), ref)
	}
	assert.True(t, f.fileExists(t, keepImg.Image))

	_, err = f.categories.Get(ctx, sub.ID)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
	_, err = f.images.Get(ctx, subImg.ID)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	tree, err := f.categories.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, keep.ID, tree[0].ID)
	assert.Equal(t, 0, tree[0].DisplayOrder)
}

func TestCategoryImageReplace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.categories.Create(ctx, CreateCategoryInput{Name: "Instalaciones", Image: webpUpload("a.webp")})
	require.NoError(t, err)

	updated, err := f.categories.Update(ctx, created.ID, UpdateCategoryInput{Image: attachments.Change{Upload: webpUpload("b.webp")}})
	require.NoError(t, err)
	assert.False(t, f.fileExists(t, created.Image))
	assert.True(t, f.fileExists(t, updated.Image))
	assert.Equal(t, "/uploads/"+updated.Image, updated.ImageURL)
}

func strPtr(v string) *string { return &v }

func TestCategoryMoveConflictsWithConcurrentMove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m1 := f.category(t, "Facilities", nil)
	m2 := f.category(t, "Events", nil)
	m3 := f.category(t, "Awards", nil)
	sub := f.category(t, "Lobby", &m1.ID)

	f.afterFirstRead(t, "gallery_categories", func() {
		require.NoError(t, f.conn.Exec("UPDATE gallery_categories SET parent_id = ?, display_order = 0 WHERE id = ?", m3.ID, sub.ID).Error)
	})

	_, err := f.categories.Update(ctx, sub.ID, UpdateCategoryInput{ParentID: &m2.ID})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))

	got, err := f.categories.Get(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, m3.ID, *got.ParentID)
}
