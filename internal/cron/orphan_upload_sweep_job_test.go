package cron

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/clinic-backend/pkg/storage/local"
)

type fakeReferences struct {
	refs map[string]struct{}
	err  error
}

func (f fakeReferences) Referenced(context.Context) (map[string]struct{}, error) {
	return f.refs, f.err
}

func writeUpload(t *testing.T, store *local.Store, name string, age time.Duration) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), name, strings.NewReader("data")))
	when := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(filepath.Join(store.Root(), name), when, when))
}

func newSweepJob(t *testing.T, store uploadStore, refs referenceSource) Job {
	t.Helper()
	job, err := NewOrphanUploadSweepJob(OrphanUploadSweepJobParams{
		Logger:      testLogger(),
		Storage:     store,
		References:  refs,
		GracePeriod: time.Hour,
	})
	require.NoError(t, err)
	return job
}

func TestOrphanUploadSweepRemovesOnlyOldUnreferencedFiles(t *testing.T) {
	store, err := local.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	writeUpload(t, store, "kept.png", 3*time.Hour)
	writeUpload(t, store, "orphan.png", 3*time.Hour)
	writeUpload(t, store, "fresh.png", time.Minute)

	job := newSweepJob(t, store, fakeReferences{refs: map[string]struct{}{"kept.png": {}}})
	require.NoError(t, job.Run(ctx))

	for name, want := range map[string]bool{"kept.png": true, "orphan.png": false, "fresh.png": true} {
		ok, err := store.Exists(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, want, ok, name)
	}
}

func TestOrphanUploadSweepAbortsWithoutReferences(t *testing.T) {
	store, err := local.New(t.TempDir())
	require.NoError(t, err)
	writeUpload(t, store, "a.png", 3*time.Hour)

	job := newSweepJob(t, store, fakeReferences{err: errors.New("db down")})
	require.Error(t, job.Run(context.Background()))

	ok, err := store.Exists(context.Background(), "a.png")
	require.NoError(t, err)
	assert.True(t, ok, "nothing may be removed when references are unknown")
}

type failingRemoveStore struct {
	objects []local.Object
}

func (f failingRemoveStore) List(context.Context) ([]local.Object, error) { return f.objects, nil }
func (f failingRemoveStore) Remove(_ context.Context, name string) error {
	return errors.New("permission denied: " + name)
}

func TestOrphanUploadSweepAggregatesRemoveErrors(t *testing.T) {
	old := time.Now().Add(-48 * time.Hour)
	store := failingRemoveStore{objects: []local.Object{{Name: "a.png", ModTime: old}, {Name: "b.png", ModTime: old}}}

	err := newSweepJob(t, store, fakeReferences{refs: map[string]struct{}{}}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.png")
	assert.Contains(t, err.Error(), "b.png")
}
