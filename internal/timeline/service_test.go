package timeline

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

func intPtr(v int) *int { return &v }

func titles(entries []EntryDTO) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}

func TestTimelineAppendReorderDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, CreateInput{Year: 1998, Title: "Fundación", Image: pngUpload("a.png")})
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, CreateInput{Year: 2005, Title: "Nueva sede"})
	require.NoError(t, err)
	c, err := f.svc.Create(ctx, CreateInput{Year: 2020, Title: "Telemedicina"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, []int{a.DisplayOrder, b.DisplayOrder, c.DisplayOrder})

	list, err := f.svc.Reorder(ctx, []uuid.UUID{c.ID, a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Telemedicina", "Fundación", "Nueva sede"}, titles(list))

	require.NoError(t, f.svc.Delete(ctx, a.ID))
	assert.False(t, f.fileExists(t, a.Image))

	list, err = f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, c.ID, list[0].ID)
	assert.Equal(t, 0, list[0].DisplayOrder)
	assert.Equal(t, b.ID, list[1].ID)
	assert.Equal(t, 1, list[1].DisplayOrder)
}

func TestTimelineValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{Year: 1850, Title: "Antes"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, CreateInput{Year: 2000, Title: "  "})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	created, err := f.svc.Create(ctx, CreateInput{Year: 2000, Title: "Ok"})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, created.ID, UpdateInput{Year: intPtr(3000)})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestTimelineUpdateKeepsPositionAndReplacesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{Year: 1990, Title: "Primero"})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, CreateInput{Year: 1995, Title: "Segundo", Image: pngUpload("old.png")})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, second.ID, UpdateInput{
		Title: strPtr("Segundo hito"),
		Image: attachments.Change{Upload: pngUpload("new.png")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.DisplayOrder)
	assert.Equal(t, "Segundo hito", updated.Title)
	assert.NotEqual(t, second.Image, updated.Image)
	assert.False(t, f.fileExists(t, second.Image))
	assert.True(t, f.fileExists(t, updated.Image))

	cleared, err := f.svc.Update(ctx, second.ID, UpdateInput{Image: attachments.Change{Clear: true}})
	require.NoError(t, err)
	assert.Empty(t, cleared.Image)
	assert.Empty(t, cleared.ImageURL)
	assert.False(t, f.fileExists(t, updated.Image))
}
