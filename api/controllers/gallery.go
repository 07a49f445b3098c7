package controllers

import (
	"net/http"

	"github.com/angelmondragon/clinic-backend/api/responses"
	"github.com/angelmondragon/clinic-backend/api/validators"
	"github.com/angelmondragon/clinic-backend/internal/gallery"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
)

// GalleryTree returns root categories with their subcategories nested.
func GalleryTree(svc gallery.CategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree, err := svc.Tree(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tree)
	}
}

// ListGalleryCategories lists one sibling group: roots, or the children of ?parent_id.
func ListGalleryCategories(svc gallery.CategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, err := validators.ParseOptionalUUIDQuery(r, "parent_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), parentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetGalleryCategory(svc gallery.CategoryService, logg *logger.Logger) http.HandlerFunc {
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

func CreateGalleryCategory(svc gallery.CategoryService, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withForm(w, r, maxUpload, logg, func(f *formFields) (any, int, error) {
			input := gallery.CreateCategoryInput{
				ParentID:    f.id("parent_id"),
				Name:        f.String("name"),
				Description: f.OptionalString("description"),
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

func UpdateGalleryCategory(svc gallery.CategoryService, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		withForm(w, r, maxUpload, logg, func(f *formFields) (any, int, error) {
			input := gallery.UpdateCategoryInput{
				ParentID:    f.id("parent_id"),
				ClearParent: f.flag("clear_parent"),
				Name:        f.OptionalString("name"),
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

// DeleteGalleryCategory removes the category with its subcategories and their images.
func DeleteGalleryCategory(svc gallery.CategoryService, logg *logger.Logger) http.HandlerFunc {
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

func ReorderGalleryCategories(svc gallery.CategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body validators.CategoryReorderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Reorder(r.Context(), body.ParentID, body.CategoryIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CategoryImages lists the images of the {categoryId} path segment.
func CategoryImages(svc gallery.ImageService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := validators.ParseUUIDParam(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), categoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListGalleryImages is the admin listing; ?category_id is required.
func ListGalleryImages(svc gallery.ImageService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := validators.ParseOptionalUUIDQuery(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if categoryID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category_id is required"))
			return
		}
		list, err := svc.List(r.Context(), *categoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetGalleryImage(svc gallery.ImageService, logg *logger.Logger) http.HandlerFunc {
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

func CreateGalleryImage(svc gallery.ImageService, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withForm(w, r, maxUpload, logg, func(f *formFields) (any, int, error) {
			categoryID := f.id("category_id")
			if f.err != nil {
				return nil, 0, f.err
			}
			if categoryID == nil {
				return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "category_id is required")
			}
			image, err := f.Image(validators.ImageField)
			if err != nil {
				return nil, 0, err
			}
			dto, err := svc.Create(r.Context(), gallery.CreateImageInput{
				CategoryID: *categoryID,
				Title:      f.OptionalString("title"),
				AltText:    f.OptionalString("alt_text"),
				Image:      image,
			})
			return dto, http.StatusCreated, err
		})
	}
}

func UpdateGalleryImage(svc gallery.ImageService, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		withForm(w, r, maxUpload, logg, func(f *formFields) (any, int, error) {
			input := gallery.UpdateImageInput{
				CategoryID: f.id("category_id"),
				Title:      f.OptionalString("title"),
				AltText:    f.OptionalString("alt_text"),
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

func DeleteGalleryImage(svc gallery.ImageService, logg *logger.Logger) http.HandlerFunc {
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

func ReorderGalleryImages(svc gallery.ImageService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body validators.ImageReorderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Reorder(r.Context(), body.CategoryID, body.ImageIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
