package services

import (
	"context"
	"io"
	"strings"
	"testing"

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
	require.NoError(t, conn.AutoMigrate(&models.Service{}))

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client := db.NewFromConn(conn)

	orderer, err := ordering.NewManager[models.Service](ordering.Params{DB: client, Logger: logg})
	require.NoError(t, err)

	store, err := local.New(t.TempDir())
	require.NoError(t, err)
	files, err := attachments.NewManager(attachments.Params{Storage: store, PublicPath: "/uploads", Logger: logg})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repository: NewRepository(conn),
		Ordering:   orderer,
		Files:      files,
	})
	require.NoError(t, err)

	return &fixture{svc: svc, conn: conn, store: store}
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
