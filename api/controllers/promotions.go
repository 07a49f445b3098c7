package controllers

import (
	"net/http"

	"github.com/angelmondragon/clinic-backend/api/responses"
	"github.com/angelmondragon/clinic-backend/api/validators"
	"github.com/angelmondragon/clinic-backend/internal/promotions"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
)

// PublicPromotions lists the promotions visible on the website right now.
func PublicPromotions(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListPublic(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminPromotions lists every promotion, inactive and scheduled ones included.
func AdminPromotions(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetPromotion(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func CreatePromotion(svc promotions.Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withForm(w, r, maxUpload, logg, func(f *formFields) (any, int, error) {
			input := promotions.CreateInput{
				Title:         f.String("title"),
				Description:   f.String("description"),
				DiscountLabel: f.OptionalString("discount_label"),
				IsActive:      true,
				StartsAt:      f.time("starts_at"),
				EndsAt:        f.time("ends_at"),
			}
			if active := f.boolean("is_active"); active != nil {
				input.IsActive = *active
			}
			if f.err != nil {
				return nil, 0, f.err
			}
			image, err := f.Image(validators.ImageField)
			if err != nil {
				return nil, 0, err
			}
			input.Image = image

			dto, err := svc.Create(r.Context(), input)
			return dto, http.StatusCreated, err
		})
	}
}

func UpdatePromotion(svc promotions.Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		withForm(w, r, maxUpload, logg, func(f *formFields) (any, int, error) {
			input := promotions.UpdateInput{
				Title:         f.OptionalString("title"),
				Description:   f.OptionalString("description"),
				DiscountLabel: f.OptionalString("discount_label"),
				IsActive:      f.boolean("is_active"),
				StartsAt:      f.time("starts_at"),
				EndsAt:        f.time("ends_at"),
				ClearSchedule: f.flag("clear_schedule"),
			}
			if f.err != nil {
				return nil, 0, f.err
			}
			change, err := f.ImageChange()
			if err != nil {
				return nil, 0, err
			}
			input.Image = change

			dto, err := svc.Update(r.Context(), id, input)
			return dto, http.StatusOK, err
		})
	}
}

func DeletePromotion(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.NoContent(w)
	}
}

func ReorderPromotions(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body validators.PromotionReorderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Reorder(r.Context(), body.PromotionIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
