package app

import (
	"fmt"

	"github.com/angelmondragon/clinic-backend/internal/cron"
	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/pkg/db"
	"github.com/angelmondragon/clinic-backend/pkg/db/models"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
)

// Collections holds one ordering manager per ordered table.
type Collections struct {
	Promotions        *ordering.Manager[models.Promotion]
	Services          *ordering.Manager[models.Service]
	Timeline          *ordering.Manager[models.TimelineEntry]
	GalleryCategories *ordering.Manager[models.GalleryCategory]
	GalleryImages     *ordering.Manager[models.GalleryImage]
}

// NewCollections wires the ordering managers. locker may be nil, in which case
// concurrent reorders on one scope resolve as last writer wins.
func NewCollections(client *db.Client, locker ordering.Locker, logg *logger.Logger) (*Collections, error) {
	params := func(scopeColumn string) ordering.Params {
		return ordering.Params{DB: client, ScopeColumn: scopeColumn, Locker: locker, Logger: logg}
	}

	promotions, err := ordering.NewManager[models.Promotion](params(""))
	if err != nil {
		return nil, fmt.Errorf("promotion ordering: %w", err)
	}
	services, err := ordering.NewManager[models.Service](params(""))
	if err != nil {
		return nil, fmt.Errorf("service ordering: %w", err)
	}
	timeline, err := ordering.NewManager[models.TimelineEntry](params(""))
	if err != nil {
		return nil, fmt.Errorf("timeline ordering: %w", err)
	}
	categories, err := ordering.NewManager[models.GalleryCategory](params("parent_id"))
	if err != nil {
		return nil, fmt.Errorf("gallery category ordering: %w", err)
	}
	images, err := ordering.NewManager[models.GalleryImage](params("category_id"))
	if err != nil {
		return nil, fmt.Errorf("gallery image ordering: %w", err)
	}

	return &Collections{
		Promotions:        promotions,
		Services:          services,
		Timeline:          timeline,
		GalleryCategories: categories,
		GalleryImages:     images,
	}, nil
}

// All lists the managers for the display order repair job.
func (c *Collections) All() []cron.OrderedCollection {
	return []cron.OrderedCollection{
		c.Promotions,
		c.Services,
		c.Timeline,
		c.GalleryCategories,
		c.GalleryImages,
	}
}
