package validators

import "github.com/google/uuid"

// Reorder payloads carry the full permutation of a scope, first id first.

type PromotionReorderRequest struct {
	PromotionIDs []uuid.UUID `json:"promotion_ids" validate:"required,min=1"`
}

type ServiceReorderRequest struct {
	ServiceIDs []uuid.UUID `json:"service_ids" validate:"required,min=1"`
}

type TimelineReorderRequest struct {
	EntryIDs []uuid.UUID `json:"entry_ids" validate:"required,min=1"`
}

// CategoryReorderRequest reorders the children of ParentID, or the roots when it is nil.
type CategoryReorderRequest struct {
	ParentID    *uuid.UUID  `json:"parent_id"`
	CategoryIDs []uuid.UUID `json:"category_ids" validate:"required,min=1"`
}

type ImageReorderRequest struct {
	CategoryID uuid.UUID   `json:"category_id" validate:"required"`
	ImageIDs   []uuid.UUID `json:"image_ids" validate:"required,min=1"`
}
