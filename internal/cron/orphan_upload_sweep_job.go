package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/clinic-backend/pkg/logger"
	"github.com/angelmondragon/clinic-backend/pkg/storage/local"
)

const defaultOrphanGracePeriod = 24 * time.Hour

type uploadStore interface {
	List(ctx context.Context) ([]local.Object, error)
	Remove(ctx context.Context, name string) error
}

type referenceSource interface {
	Referenced(ctx context.Context) (map[string]struct{}, error)
}

type OrphanUploadSweepJobParams struct {
	Logger      *logger.Logger
	Storage     uploadStore
	References  referenceSource
	GracePeriod time.Duration
}

// NewOrphanUploadSweepJob removes stored files that no record references. Files younger
// than the grace period are kept so uploads whose record is still being written survive.
func NewOrphanUploadSweepJob(params OrphanUploadSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("upload storage required")
	}
	if params.References == nil {
		return nil, fmt.Errorf("reference source required")
	}
	grace := params.GracePeriod
	if grace <= 0 {
		grace = defaultOrphanGracePeriod
	}
	return &orphanUploadSweepJob{
		logg:    params.Logger,
		storage: params.Storage,
		refs:    params.References,
		grace:   grace,
		now:     time.Now,
	}, nil
}

type orphanUploadSweepJob struct {
	logg    *logger.Logger
	storage uploadStore
	refs    referenceSource
	grace   time.Duration
	now     func() time.Time
}

func (j *orphanUploadSweepJob) Name() string { return "orphan-upload-sweep" }

func (j *orphanUploadSweepJob) Run(ctx context.Context) error {
	// Files are listed before references are read: a file saved in between is
	// either too young to sweep or already referenced.
	objects, err := j.storage.List(ctx)
	if err != nil {
		return fmt.Errorf("list uploads: %w", err)
	}
	referenced, err := j.refs.Referenced(ctx)
	if err != nil {
		return fmt.Errorf("collect references: %w", err)
	}

	cutoff := j.now().Add(-j.grace)
	var (
		removed int
		errs    error
	)
	for _, obj := range objects {
		if _, ok := referenced[obj.Name]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}
		if err := j.storage.Remove(ctx, obj.Name); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("remove %s: %w", obj.Name, err))
			continue
		}
		removed++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"files":      len(objects),
		"referenced": len(referenced),
		"removed":    removed,
		"failed":     len(multierr.Errors(errs)),
		"cutoff":     cutoff,
	})
	j.logg.Info(logCtx, "orphan upload sweep complete")
	return errs
}
