// Package blobref manages transient local preview references for images that
// have been selected but not yet uploaded.
//
// Each reference is backed by an OS-level resource (a temp file), so release
// is explicit and exactly-once per handle rather than left to the garbage
// collector. An Arena owns every reference allocated within one draft session
// and releases all of them when the session ends, covering the case where the
// session is torn down with slots still occupied.
package blobref

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/solara-app/mediakit/internal/cache"
	"github.com/solara-app/mediakit/internal/model"
)

var refLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	refLogger = l
}

// Handle is one allocated preview reference.
type Handle struct {
	id   string
	url  string
	path string
}

// URL returns the display URL for this reference. It is renderable without a
// network round trip.
func (h *Handle) URL() string {
	return h.url
}

type Arena struct {
	dir     string
	handles *cache.Cache[string, *Handle] // keyed by display URL
}

func NewArena() (*Arena, error) {
	dir, err := os.MkdirTemp("", "mediakit-draft-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create preview dir: %w", err)
	}

	return &Arena{
		dir:     dir,
		handles: cache.NewCache[string, *Handle](),
	}, nil
}

// Allocate writes the file payload to a session-local temp file and returns a
// handle whose URL can be rendered immediately.
func (a *Arena) Allocate(f *model.File) (*Handle, error) {
	id := uuid.New().String()
	path := filepath.Join(a.dir, id+filepath.Ext(f.Name))

	if err := os.WriteFile(path, f.Data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write preview file: %w", err)
	}

	h := &Handle{
		id:   id,
		url:  "file://" + path,
		path: path,
	}
	a.handles.Set(h.url, h)

	return h, nil
}

// Owns reports whether url is a reference allocated by this arena.
func (a *Arena) Owns(url string) bool {
	_, ok := a.handles.Get(url)
	return ok
}

// Release frees the reference behind url. Releasing a URL this arena never
// allocated (a remote URL, or an already-released reference) is a no-op, so
// callers never need to distinguish remote slots from local ones.
func (a *Arena) Release(url string) {
	h, ok := a.handles.Get(url)
	if !ok {
		return
	}
	a.handles.Delete(url)

	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		refLogger.Warn().Err(err).Str("path", h.path).Msg("Failed to remove preview file")
	}
}

// ReleaseAll frees every outstanding reference. The arena stays usable.
func (a *Arena) ReleaseAll() {
	for url := range a.handles.Snapshot() {
		a.Release(url)
	}
}

// Len returns the number of outstanding references.
func (a *Arena) Len() int {
	return a.handles.Len()
}

// Close releases every outstanding reference and removes the session dir.
// Safe to call more than once.
func (a *Arena) Close() error {
	a.ReleaseAll()
	return os.RemoveAll(a.dir)
}
