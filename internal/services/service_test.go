package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

func intPtr(v int) *int { return &v }

func TestCreateServiceWithPrice(t *testing.T) {
	f := newFixture(t)
	price := decimal.RequireFromString("450.505")

	created, err := f.svc.Create(context.Background(), CreateInput{
		Name:            "Consulta general",
		Price:           &price,
		DurationMinutes: intPtr(30),
		Image:           pngUpload("consult.jpg"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.Price)
	assert.Equal(t, "450.51", *created.Price)
	assert.Equal(t, 30, *created.DurationMinutes)
	assert.Equal(t, 0, created.DisplayOrder)
	assert.True(t, f.fileExists(t, created.Image))

	got, err := f.svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Price)
	assert.Equal(t, "450.51", *got.Price)
}

func TestCreateServiceValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	negative := decimal.NewFromInt(-1)
	huge := decimal.RequireFromString("100000000")

	cases := map[string]CreateInput{
		"missing name":      {Name: " "},
		"negative price":    {Name: "x", Price: &negative},
		"price too large":   {Name: "x", Price: &huge},
		"non-positive time": {Name: "x", DurationMinutes: intPtr(0)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, in)
			assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestUpdateServiceClearsOptionalFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	price := decimal.NewFromInt(100)

	created, err := f.svc.Create(ctx, CreateInput{Name: "Limpieza", Price: &price, DurationMinutes: intPtr(45)})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, created.ID, UpdateInput{ClearPrice: true, ClearDuration: true, Description: strPtr(" dental ")})
	require.NoError(t, err)
	assert.Nil(t, updated.Price)
	assert.Nil(t, updated.DurationMinutes)
	assert.Equal(t, "dental", updated.Description)
}

func TestServiceImageLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, CreateInput{Name: "Rayos X", Image: pngUpload("a.png")})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, created.ID, UpdateInput{Image: attachments.Change{Upload: pngUpload("b.png")}})
	require.NoError(t, err)
	assert.False(t, f.fileExists(t, created.Image))
	assert.True(t, f.fileExists(t, updated.Image))

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	assert.False(t, f.fileExists(t, updated.Image))

	_, err = f.svc.Get(ctx, created.ID)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestServiceReorderAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, name := range []string{"A", "B", "C"} {
		created, err := f.svc.Create(ctx, CreateInput{Name: name})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	list, err := f.svc.Reorder(ctx, []uuid.UUID{ids[2], ids[0], ids[1]})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "C", list[0].Name)
	assert.Equal(t, "A", list[1].Name)
	assert.Equal(t, "B", list[2].Name)

	require.NoError(t, f.svc.Delete(ctx, ids[0]))
	list, err = f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "C", list[0].Name)
	assert.Equal(t, 0, list[0].DisplayOrder)
	assert.Equal(t, "B", list[1].Name)
	assert.Equal(t, 1, list[1].DisplayOrder)
}
