package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/clinic-backend/internal/attachments"
	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
)

const (
	// ImageField is the multipart part carrying a record's image.
	ImageField = "image"
	// ClearImageField removes the current image when set to true.
	ClearImageField = "clear_image"

	maxTextLen = 4000
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Form is a parsed multipart/form-data request body.
type Form struct {
	form     *multipart.Form
	maxBytes int64
	opened   []multipart.File
}

// ParseMultipartForm reads the request body, rejecting anything larger than maxBytes.
// Callers must Close the returned form once the uploads have been stored.
func ParseMultipartForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*Form, error) {
	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content type must be multipart/form-data")
	}
	// Leave headroom for the text fields around the file part.
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload exceeds maximum size").
				WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}
	return &Form{form: r.MultipartForm, maxBytes: maxBytes}, nil
}

func (f *Form) Close() {
	if f == nil {
		return
	}
	for _, file := range f.opened {
		_ = file.Close()
	}
	if f.form != nil {
		_ = f.form.RemoveAll()
	}
}

// Has reports whether the field was sent at all, even empty.
func (f *Form) Has(key string) bool {
	_, ok := f.form.Value[key]
	return ok
}

func (f *Form) value(key string) (string, bool) {
	values, ok := f.form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// String returns the sanitized field value, empty when absent.
func (f *Form) String(key string) string {
	raw, _ := f.value(key)
	return SanitizeString(raw, maxTextLen)
}

// OptionalString is nil when the field is absent, so updates can tell "unset" from "blank".
func (f *Form) OptionalString(key string) *string {
	raw, ok := f.value(key)
	if !ok {
		return nil
	}
	v := SanitizeString(raw, maxTextLen)
	return &v
}

func (f *Form) Bool(key string) (*bool, error) {
	raw, ok := f.value(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil, fieldError(key, "must be true or false")
	}
	return &v, nil
}

func (f *Form) Int(key string) (*int, error) {
	raw, ok := f.value(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fieldError(key, "must be a whole number")
	}
	return &v, nil
}

func (f *Form) Decimal(key string) (*decimal.Decimal, error) {
	raw, ok := f.value(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fieldError(key, "must be a decimal number")
	}
	return &v, nil
}

// Time accepts RFC 3339 timestamps or bare dates.
func (f *Form) Time(key string) (*time.Time, error) {
	raw, ok := f.value(key)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return nil, nil
	}
	if v, err := time.Parse(time.RFC3339, raw); err == nil {
		return &v, nil
	}
	v, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fieldError(key, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
	}
	return &v, nil
}

func (f *Form) UUID(key string) (*uuid.UUID, error) {
	raw, ok := f.value(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fieldError(key, "must be a valid uuid")
	}
	return &v, nil
}

// Image returns the sniffed upload under key, or nil when no file was sent.
func (f *Form) Image(key string) (*attachments.Upload, error) {
	headers := f.form.File[key]
	if len(headers) == 0 {
		return nil, nil
	}
	header := headers[0]
	if header.Size > f.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload exceeds maximum size").
			WithDetails(map[string]any{"field": key, "max_bytes": f.maxBytes})
	}
	file, err := header.Open()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read upload")
	}
	detected, err := mimetype.DetectReader(file)
	if err != nil {
		file.Close()
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read upload")
	}
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		file.Close()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type").
			WithDetails(map[string]any{"field": key, "content_type": detected.String(), "allowed": allowedImageTypes})
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read upload")
	}
	f.opened = append(f.opened, file)
	return &attachments.Upload{
		Reader:      file,
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: detected.String(),
	}, nil
}

// ImageChange resolves the image part and the clear flag into an attachment change.
// Sending both is rejected.
func (f *Form) ImageChange() (attachments.Change, error) {
	upload, err := f.Image(ImageField)
	if err != nil {
		return attachments.Change{}, err
	}
	clear, err := f.Bool(ClearImageField)
	if err != nil {
		return attachments.Change{}, err
	}
	if upload != nil && clear != nil && *clear {
		return attachments.Change{}, pkgerrors.New(pkgerrors.CodeValidation, "send either an image or clear_image, not both")
	}
	change := attachments.Change{Upload: upload}
	if clear != nil {
		change.Clear = *clear
	}
	return change, nil
}

func fieldError(key, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{key: msg})
}
