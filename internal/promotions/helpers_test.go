package promotions

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

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
	svc   Service
	conn  *gorm.DB
	store *local.Store
	now   time.Time
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
	require.NoError(t, conn.AutoMigrate(&models.Promotion{}))

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client := db.NewFromConn(conn)

	orderer, err := ordering.NewManager[models.Promotion](ordering.Params{DB: client, Logger: logg})
	require.NoError(t, err)

	store, err := local.New(t.TempDir())
	require.NoError(t, err)
	files, err := attachments.NewManager(attachments.Params{Storage: store, PublicPath: "/uploads", Logger: logg})
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewService(ServiceParams{
		Repository: NewRepository(conn),
		Ordering:   orderer,
		Files:      files,
		Now:        func() time.Time { return now },
	})
	require.NoError(t, err)

	return &fixture{svc: svc, conn: conn, store: store, now: now}
}

func (f *fixture) fileExists(t *testing.T, ref string) bool {
	t.Helper()
	ok, err := f.store.Exists(context.Background(), ref)
	require.NoError(t, err)
	return ok
}

func pngUpload(name string) *attachments.Upload {
	return &attachments.Upload{Reader: strings.NewReader("\x89PNG"), Filename: name, ContentType: "image/png"}
}

func strPtr(v string) *string { return &v }

func timePtr(v time.Time) *time.Time { return &v }
