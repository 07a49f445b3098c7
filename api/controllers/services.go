package controllers

import (
	"net/http"

	"github.com/angelmondragon/clinic-backend/api/responses"
	"github.com/angelmondragon/clinic-backend/api/validators"
	"github.com/angelmondragon/clinic-backend/internal/services"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
)

func ListServices(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetService(svc services.Service, logg *logger.Logger) http.HandlerFunc {
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

func CreateService(svc services.Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withForm(w, r, maxUpload, logg, func(f *formFields) (any, int, error) {
			input := services.CreateInput{
				Name:            f.String("name"),
				Description:     f.String("description"),
				Price:           f.decimal("price"),
				DurationMinutes: f.integer("duration_minutes"),
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

func UpdateService(svc services.Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		withForm(w, r, maxUpload, logg, func(f *formFields) (any, int, error) {
			input := services.UpdateInput{
				Name:            f.OptionalString("name"),
				Description:     f.OptionalString("description"),
				Price:           f.decimal("price"),
				ClearPrice:      f.flag("clear_price"),
				DurationMinutes: f.integer("duration_minutes"),
				ClearDuration:   f.flag("clear_duration"),
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

func DeleteService(svc services.Service, logg *logger.Logger) http.HandlerFunc {
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

func ReorderServices(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body validators.ServiceReorderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Reorder(r.Context(), body.ServiceIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
