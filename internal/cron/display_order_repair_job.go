package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
)

// OrderedCollection is the part of an ordering manager the repair job drives.
type OrderedCollection interface {
	Table() string
	Scopes(ctx context.Context) ([]ordering.Scope, error)
	Normalize(ctx context.Context, scope ordering.Scope) (int, error)
}

type DisplayOrderRepairJobParams struct {
	Logger      *logger.Logger
	Collections []OrderedCollection
}

// NewDisplayOrderRepairJob renumbers every scope of every ordered table to 0..n-1.
// Regular writes keep sequences dense; this repairs rows edited outside the API.
func NewDisplayOrderRepairJob(params DisplayOrderRepairJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(params.Collections) == 0 {
		return nil, fmt.Errorf("at least one collection required")
	}
	return &displayOrderRepairJob{logg: params.Logger, collections: params.Collections}, nil
}

type displayOrderRepairJob struct {
	logg        *logger.Logger
	collections []OrderedCollection
}

func (j *displayOrderRepairJob) Name() string { return "display-order-repair" }

func (j *displayOrderRepairJob) Run(ctx context.Context) error {
	var errs error
	scopes, changed := 0, 0
	for _, c := range j.collections {
		found, err := c.Scopes(ctx)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: list scopes: %w", c.Table(), err))
			continue
		}
		for _, scope := range found {
			scopes++
			n, err := c.Normalize(ctx, scope)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s %s: normalize: %w", c.Table(), scope, err))
				continue
			}
			changed += n
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"collections": len(j.collections),
		"scopes":      scopes,
		"rows_fixed":  changed,
	})
	j.logg.Info(logCtx, "display order repair complete")
	return errs
}
