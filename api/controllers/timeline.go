package controllers

import (
	"net/http"

	"github.com/angelmondragon/clinic-backend/api/responses"
	"github.com/angelmondragon/clinic-backend/api/validators"
	"github.com/angelmondragon/clinic-backend/internal/timeline"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
)

func ListTimeline(svc timeline.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetTimelineEntry(svc timeline.Service, logg *logger.Logger) http.HandlerFunc {
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

func CreateTimelineEntry(svc timeline.Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withForm(w, r, maxUpload, logg, func(f *formFields) (any, int, error) {
			input := timeline.CreateInput{
				Title:       f.String("title"),
				Description: f.String("description"),
			}
			if year := f.integer("year"); year != nil {
				input.Year = *year
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

func UpdateTimelineEntry(svc timeline.Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		withForm(w, r, maxUpload, logg, func(f *formFields) (any, int, error) {
			input := timeline.UpdateInput{
				Year:        f.integer("year"),
				Title:       f.OptionalString("title"),
				Description: f.OptionalString("description"),
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

func DeleteTimelineEntry(svc timeline.Service, logg *logger.Logger) http.HandlerFunc {
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

func ReorderTimeline(svc timeline.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body validators.TimelineReorderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Reorder(r.Context(), body.EntryIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
