package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/clinic-backend/api/responses"
	"github.com/angelmondragon/clinic-backend/api/validators"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
)

// formFields reads typed fields off a multipart form and keeps the first parse error.
type formFields struct {
	*validators.Form
	err error
}

func (f *formFields) boolean(key string) *bool {
	if f.err != nil {
		return nil
	}
	v, err := f.Bool(key)
	f.err = err
	return v
}

func (f *formFields) integer(key string) *int {
	if f.err != nil {
		return nil
	}
	v, err := f.Int(key)
	f.err = err
	return v
}

func (f *formFields) decimal(key string) *decimal.Decimal {
	if f.err != nil {
		return nil
	}
	v, err := f.Decimal(key)
	f.err = err
	return v
}

func (f *formFields) time(key string) *time.Time {
	if f.err != nil {
		return nil
	}
	v, err := f.Time(key)
	f.err = err
	return v
}

func (f *formFields) id(key string) *uuid.UUID {
	if f.err != nil {
		return nil
	}
	v, err := f.UUID(key)
	f.err = err
	return v
}

func (f *formFields) flag(key string) bool {
	v := f.boolean(key)
	return v != nil && *v
}

// withForm parses the multipart body, runs fn and releases the temp files afterwards.
func withForm(w http.ResponseWriter, r *http.Request, maxBytes int64, logg *logger.Logger, fn func(f *formFields) (any, int, error)) {
	form, err := validators.ParseMultipartForm(w, r, maxBytes)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	defer form.Close()

	data, status, err := fn(&formFields{Form: form})
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, status, data)
}
