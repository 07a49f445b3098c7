package attachments

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
)

const maxExtLen = 10

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Upload is a validated file received from a client.
type Upload struct {
	Reader      io.Reader
	Filename    string
	Size        int64
	ContentType string
}

// Storage persists attachment bytes under a bare reference name.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Remove(ctx context.Context, name string) error
}

// Change describes what a write does to a record's image: a new Upload replaces it,
// Clear drops it, the zero value keeps it.
type Change struct {
	Upload *Upload
	Clear  bool
}

// Files is the attachment surface resource services depend on.
type Files interface {
	Apply(ctx context.Context, current string, change Change, save func(ref string) error) (string, error)
	Delete(ctx context.Context, remove func() (string, error)) error
	DeleteFiles(ctx context.Context, refs []string)
	PublicURL(ref string) string
}

type Params struct {
	Storage    Storage
	PublicPath string
	Logger     *logger.Logger
}

// Manager owns the lifecycle of the single image a record may carry: it writes new
// files, swaps references and removes files once nothing points at them.
type Manager struct {
	storage    Storage
	publicPath string
	logg       *logger.Logger
	newName    func() string
}

func NewManager(params Params) (*Manager, error) {
	if params.Storage == nil {
		return nil, fmt.Errorf("storage required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Manager{
		storage:    params.Storage,
		publicPath: strings.TrimRight(strings.TrimSpace(params.PublicPath), "/"),
		logg:       params.Logger,
		newName:    func() string { return uuid.NewString() },
	}, nil
}

// Store writes the upload under a fresh random reference and returns it.
func (m *Manager) Store(ctx context.Context, upload Upload) (string, error) {
	if upload.Reader == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image file is required")
	}
	ref := m.newName() + extension(upload)
	if err := m.storage.Save(ctx, ref, upload.Reader); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeStorageWrite, err, "store uploaded file")
	}
	return ref, nil
}

// Attach stores the upload and hands the reference to persist. When persist fails the
// new file is removed so no file is left without an owner.
func (m *Manager) Attach(ctx context.Context, upload Upload, persist func(ref string) error) (string, error) {
	return m.Replace(ctx, "", upload, persist)
}

// Replace stores the upload, persists the new reference and then removes previous.
// Removing previous is best-effort; failures are logged and never returned.
func (m *Manager) Replace(ctx context.Context, previous string, upload Upload, persist func(ref string) error) (string, error) {
	ref, err := m.Store(ctx, upload)
	if err != nil {
		return "", err
	}
	if persist != nil {
		if err := persist(ref); err != nil {
			m.cleanup(ctx, ref)
			return "", err
		}
	}
	if previous != "" && previous != ref {
		m.cleanup(ctx, previous)
	}
	return ref, nil
}

// Apply runs save with the reference the record should hold after change and returns it.
// Files no longer referenced once save succeeds are removed.
func (m *Manager) Apply(ctx context.Context, current string, change Change, save func(ref string) error) (string, error) {
	switch {
	case change.Upload != nil:
		return m.Replace(ctx, current, *change.Upload, save)
	case change.Clear && current != "":
		if err := save(""); err != nil {
			return "", err
		}
		m.cleanup(ctx, current)
		return "", nil
	default:
		if err := save(current); err != nil {
			return "", err
		}
		return current, nil
	}
}

// Delete runs remove (the record delete) and then drops the file the deleted row
// referenced, as reported by remove. The file is only touched once the record is gone.
func (m *Manager) Delete(ctx context.Context, remove func() (string, error)) error {
	ref, err := remove()
	if err != nil {
		return err
	}
	if ref != "" {
		m.cleanup(ctx, ref)
	}
	return nil
}

// DeleteFiles removes files whose records were already deleted, e.g. by a cascade.
func (m *Manager) DeleteFiles(ctx context.Context, refs []string) {
	var errs error
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := m.storage.Remove(ctx, ref); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", ref, err))
		}
	}
	if errs != nil {
		logCtx := m.logg.WithFields(ctx, map[string]any{
			"failed": len(multierr.Errors(errs)),
			"error":  errs.Error(),
		})
		m.logg.Warn(logCtx, "attachments.cleanup_failed")
	}
}

// PublicURL maps a stored reference to the path clients fetch it from.
func (m *Manager) PublicURL(ref string) string {
	return PublicURL(m.publicPath, ref)
}

// PublicURL joins prefix and ref; an empty ref yields an empty URL.
func PublicURL(prefix, ref string) string {
	if ref == "" {
		return ""
	}
	return strings.TrimRight(prefix, "/") + "/" + ref
}

func (m *Manager) cleanup(ctx context.Context, ref string) {
	if err := m.storage.Remove(ctx, ref); err != nil {
		logCtx := m.logg.WithFields(ctx, map[string]any{
			"reference": ref,
			"error":     err.Error(),
		})
		m.logg.Warn(logCtx, "attachments.cleanup_failed")
	}
}

func extension(upload Upload) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(upload.Filename)))
	if validExt(ext) {
		return ext
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(upload.ContentType, ";", 2)[0]))
	return extByContentType[contentType]
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > maxExtLen || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
