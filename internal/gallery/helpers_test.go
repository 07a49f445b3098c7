package gallery

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/pkg/db"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
	"github.com/angelmondragon/clinic-backend/pkg/storage/local"
)

type fixture struct {
	conn       *gorm.DB
	categories CategoryService
	images     ImageService
	store      *local.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&models.GalleryCategory{}, &models.GalleryImage{}))

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client := db.NewFromConn(conn)

	categoryOrder, err := ordering.NewManager[models.GalleryCategory](ordering.Params{DB: client, ScopeColumn: "parent_id", Logger: logg})
	require.NoError(t, err)
	imageOrder, err := ordering.NewManager[models.GalleryImage](ordering.Params{DB: client, ScopeColumn: "category_id", Logger: logg})
	require.NoError(t, err)

	store, err := local.New(t.TempDir())
	require.NoError(t, err)
	files, err := attachments.NewManager(attachments.Params{Storage: store, PublicPath: "/uploads", Logger: logg})
	require.NoError(t, err)

	repository := NewRepository(conn)
	categories, err := NewCategoryService(CategoryServiceParams{Repository: repository, Ordering: categoryOrder, Files: files})
	require.NoError(t, err)
	images, err := NewImageService(ImageServiceParams{Repository: repository, Ordering: imageOrder, Files: files})
	require.NoError(t, err)

	return &fixture{conn: conn, categories: categories, images: images, store: store}
}

func (f *fixture) fileExists(t *testing.T, ref string) bool {
	t.Helper()
	ok, err := f.store.Exists(context.Background(), ref)
	require.NoError(t, err)
	return ok
}

func (f *fixture) category(t *testing.T, name string, parent *uuid.UUID) *CategoryDTO {
	t.Helper()
	c, err := f.categories.Create(context.Background(), CreateCategoryInput{Name: name, ParentID: parent})
	require.NoError(t, err)
	return c
}

func (f *fixture) image(t *testing.T, categoryID uuid.UUID, title string) *ImageDTO {
	t.Helper()
	img, err := f.images.Create(context.Background(), CreateImageInput{
		CategoryID: categoryID,
		Title:      &title,
		Image:      webpUpload(title + ".webp"),
	})
	require.NoError(t, err)
	return img
}

// afterFirstRead runs fn once, right after the next read of table, standing in for a
// request that commits between a service's lookup and its locked write.
func (f *fixture) afterFirstRead(t *testing.T, table string, fn func()) {
	t.Helper()
	fired := false
	name := "test:after_first_read:" + table
	require.NoError(t, f.conn.Callback().Query().After("gorm:query").Register(name, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		fn()
	}))
	t.Cleanup(func() { _ = f.conn.Callback().Query().Remove(name) })
}

func webpUpload(name string) *attachments.Upload {
	return &attachments.Upload{Reader: strings.NewReader("RIFF....WEBP"), Filename: name, ContentType: "image/webp"}
}

func names(list []CategoryDTO) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Name)
	}
	return out
}

func imageTitles(list []ImageDTO) []string {
	out := make([]string, 0, len(list))
	for _, img := range list {
		if img.Title != nil {
			out = append(out, *img.Title)
		}
	}
	return out
}
