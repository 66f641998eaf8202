// Package validate implements the image acceptance policy for draft slots.
package validate

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/solara-app/mediakit/internal/config"
	"github.com/solara-app/mediakit/internal/model"
)

// Policy is the acceptance policy an image must pass before it can occupy a
// draft slot. Sizes are in bytes.
type Policy struct {
	MaxImages int

	AllowedMIMETypes   []string
	AllowedExtensions  []string
	RejectedMIMETypes  []string
	RejectedExtensions []string

	// MaxFileSize is the local ceiling; RemoteMaxFileSize is the stricter
	// ceiling the storage backend will actually accept.
	MaxFileSize       int64
	RemoteMaxFileSize int64
}

// PolicyFromConfig converts the yaml media section into a Policy.
func PolicyFromConfig(m config.MediaConfig) Policy {
	return Policy{
		MaxImages:          m.MaxImages,
		AllowedMIMETypes:   m.AllowedMIMETypes,
		AllowedExtensions:  m.AllowedExtensions,
		RejectedMIMETypes:  m.RejectedMIMETypes,
		RejectedExtensions: m.RejectedExtensions,
		MaxFileSize:        int64(m.MaxFileSizeMB) << 20,
		RemoteMaxFileSize:  int64(m.RemoteMaxFileSizeMB) << 20,
	}
}

// ValidationError is a recoverable, user-facing rejection. It never escapes as
// a panic and carries no wrapped cause.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// extensions we consider "some kind of image" when the MIME type is empty or
// untrustworthy. Deliberately wider than the allowed set so that rejected
// formats are still recognized as images and get the format-specific message.
var imageExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff", ".svg", ".heic", ".heif", ".avif",
}

// Image checks a file against the policy. Checks run in order and
// short-circuit on the first failure; each failure has a distinct message.
func Image(f *model.File, p Policy) error {
	mime := strings.ToLower(strings.TrimSpace(f.MIME))
	ext := strings.ToLower(filepath.Ext(f.Name))

	// 1. Must be an image at all: by MIME, or by extension when MIME is empty.
	if mime != "" {
		if !strings.HasPrefix(mime, "image/") {
			return &ValidationError{Message: config.ErrNotAnImage}
		}
	} else if !slices.Contains(imageExtensions, ext) {
		return &ValidationError{Message: config.ErrNotAnImage}
	}

	// 2. Explicitly unsupported format class.
	if slices.Contains(p.RejectedMIMETypes, mime) || slices.Contains(p.RejectedExtensions, ext) {
		return &ValidationError{Message: config.ErrUnsupportedFormat}
	}

	// 3. MIME allow-list, tolerating an empty MIME by deferring to the extension.
	if mime != "" && !slices.Contains(p.AllowedMIMETypes, mime) {
		return &ValidationError{Message: config.ErrDisallowedMIMEType}
	}

	// 4. Extension allow-list.
	if !slices.Contains(p.AllowedExtensions, ext) {
		return &ValidationError{Message: config.ErrDisallowedExtension}
	}

	// 5. Local size ceiling.
	if f.Size > p.MaxFileSize {
		return &ValidationError{Message: fmt.Sprintf(config.ErrFileTooLargeFmt, p.MaxFileSize>>20)}
	}

	// 6. Remote-acceptance ceiling.
	if f.Size > p.RemoteMaxFileSize {
		return &ValidationError{Message: fmt.Sprintf(config.ErrExceedsUploadLimFmt, p.RemoteMaxFileSize>>20)}
	}

	return nil
}
