package promotions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

func titles(list []PromotionDTO) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.Title)
	}
	return out
}

func TestCreateAppendsInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, title := range []string{"A", "B", "C"} {
		created, err := f.svc.Create(ctx, CreateInput{Title: "  " + title + " ", IsActive: true})
		require.NoError(t, err)
		assert.Equal(t, title, created.Title)
		assert.Equal(t, i, created.DisplayOrder)
	}
}

func TestCreateStoresImage(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), CreateInput{Title: "Promo", Image: pngUpload("Banner.PNG")})
	require.NoError(t, err)
	require.NotEmpty(t, created.Image)
	assert.Equal(t, "/uploads/"+created.Image, created.ImageURL)
	assert.True(t, f.fileExists(t, created.Image))
}

func TestCreateValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{Title: "  "})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, CreateInput{Title: "x", StartsAt: timePtr(f.now), EndsAt: timePtr(f.now.Add(-time.Hour))})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestListPublicFiltersInactiveAndWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inputs := []CreateInput{
		{Title: "always", IsActive: true},
		{Title: "inactive", IsActive: false},
		{Title: "running", IsActive: true, StartsAt: timePtr(f.now.Add(-time.Hour)), EndsAt: timePtr(f.now.Add(time.Hour))},
		{Title: "expired", IsActive: true, EndsAt: timePtr(f.now.Add(-time.Minute))},
		{Title: "upcoming", IsActive: true, StartsAt: timePtr(f.now.Add(time.Hour))},
	}
	for _, in := range inputs {
		_, err := f.svc.Create(ctx, in)
		require.NoError(t, err)
	}

	public, err := f.svc.ListPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"always", "running"}, titles(public))

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestUpdateReplacesImageAndKeepsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, CreateInput{Title: "first", Image: pngUpload("a.png")})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, CreateInput{Title: "second"})
	require.NoError(t, err)

	_, err = f.svc.Reorder(ctx, []uuid.UUID{second.ID, first.ID})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, first.ID, UpdateInput{
		Title: strPtr("renamed"),
		Image: attachments.Change{Upload: pngUpload("b.png")},
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, 1, updated.DisplayOrder)
	assert.NotEqual(t, first.Image, updated.Image)
	assert.False(t, f.fileExists(t, first.Image), "previous image must be removed")
	assert.True(t, f.fileExists(t, updated.Image))

	cleared, err := f.svc.Update(ctx, first.ID, UpdateInput{Image: attachments.Change{Clear: true}})
	require.NoError(t, err)
	assert.Empty(t, cleared.Image)
	assert.Empty(t, cleared.ImageURL)
	assert.False(t, f.fileExists(t, updated.Image))
}

func TestUpdateMissingPromotion(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Update(context.Background(), uuid.New(), UpdateInput{Title: strPtr("x")})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestReorderAndDeleteKeepOrderDense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, CreateInput{Title: "A", IsActive: true, Image: pngUpload("a.png")})
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, CreateInput{Title: "B", IsActive: true})
	require.NoError(t, err)
	c, err := f.svc.Create(ctx, CreateInput{Title: "C", IsActive: true})
	require.NoError(t, err)

	list, err := f.svc.Reorder(ctx, []uuid.UUID{c.ID, a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, titles(list))
	for i, p := range list {
		assert.Equal(t, i, p.DisplayOrder)
	}

	require.NoError(t, f.svc.Delete(ctx, a.ID))
	assert.False(t, f.fileExists(t, a.Image))

	list, err = f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "C", list[0].Title)
	assert.Equal(t, 0, list[0].DisplayOrder)
	assert.Equal(t, "B", list[1].Title)
	assert.Equal(t, 1, list[1].DisplayOrder)

	err = f.svc.Delete(ctx, a.ID)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestDeleteRemovesImageHeldAtDeleteTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, CreateInput{Title: "Summer", Image: pngUpload("first.png")})
	require.NoError(t, err)

	// another admin swaps the picture directly in the row
	current, err := f.svc.Create(ctx, CreateInput{Title: "scratch", Image: pngUpload("second.png")})
	require.NoError(t, err)
	require.NoError(t, f.conn.Model(&models.Promotion{}).Where("id = ?", current.ID).Update("image", "").Error)
	require.NoError(t, f.conn.Model(&models.Promotion{}).Where("id = ?", created.ID).Update("image", current.Image).Error)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	assert.False(t, f.fileExists(t, current.Image))
	assert.True(t, f.fileExists(t, created.Image), "file no longer referenced by the row is left to the orphan sweep")
}

func TestReorderUnknownIDLeavesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, CreateInput{Title: "A"})
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, CreateInput{Title: "B"})
	require.NoError(t, err)

	_, err = f.svc.Reorder(ctx, []uuid.UUID{b.ID, uuid.New(), a.ID})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, titles(list))
}
