package controllers

import (
	"net/http"

	"github.com/angelmondragon/clinic-backend/api/responses"
	"github.com/angelmondragon/clinic-backend/api/validators"
	"github.com/angelmondragon/clinic-backend/internal/staff"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
)

// Staff profiles are listed alphabetically and have no manual order.

func ListStaff(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetStaffMember(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
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

func CreateStaffMember(svc staff.Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withForm(w, r, maxUpload, logg, func(f *formFields) (any, int, error) {
			photo, err := f.Image(validators.ImageField)
			if err != nil {
				return nil, 0, err
			}
			dto, err := svc.Create(r.Context(), staff.CreateInput{
				FullName:  f.String("full_name"),
				Position:  f.String("position"),
				Specialty: f.OptionalString("specialty"),
				Bio:       f.OptionalString("bio"),
				Photo:     photo,
			})
			return dto, http.StatusCreated, err
		})
	}
}

func UpdateStaffMember(svc staff.Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		withForm(w, r, maxUpload, logg, func(f *formFields) (any, int, error) {
			change, err := f.ImageChange()
			if err != nil {
				return nil, 0, err
			}
			dto, err := svc.Update(r.Context(), id, staff.UpdateInput{
				FullName:  f.OptionalString("full_name"),
				Position:  f.OptionalString("position"),
				Specialty: f.OptionalString("specialty"),
				Bio:       f.OptionalString("bio"),
				Photo:     change,
			})
			return dto, http.StatusOK, err
		})
	}
}

func DeleteStaffMember(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
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
