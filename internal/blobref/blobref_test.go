package blobref

import (
	"os"
	"strings"
	"testing"

	"github.com/solara-app/mediakit/internal/model"
)

func testFile(name string) *model.File {
	data := []byte("not really an image")
	return &model.File{Name: name, MIME: "image/jpeg", Size: int64(len(data)), Data: data}
}

func TestArena_AllocateAndRelease(t *testing.T) {
	arena, err := NewArena()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer arena.Close()

	h, err := arena.Allocate(testFile("a.jpg"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.HasPrefix(h.URL(), "file://") {
		t.Errorf("Expected a local file URL, got %q", h.URL())
	}
	if !arena.Owns(h.URL()) {
		t.Error("Expected arena to own the allocated reference")
	}
	if _, err := os.Stat(h.path); err != nil {
		t.Errorf("Expected preview file to exist: %v", err)
	}

	arena.Release(h.URL())

	if arena.Owns(h.URL()) {
		t.Error("Expected reference to be gone after release")
	}
	if _, err := os.Stat(h.path); !os.IsNotExist(err) {
		t.Errorf("Expected preview file to be removed, stat err: %v", err)
	}
}

func TestArena_ReleaseIsIdempotent(t *testing.T) {
	arena, err := NewArena()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer arena.Close()

	h, err := arena.Allocate(testFile("a.jpg"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	arena.Release(h.URL())
	arena.Release(h.URL()) // second release must not panic or error

	if arena.Len() != 0 {
		t.Errorf("Expected no outstanding references, got %d", arena.Len())
	}
}

func TestArena_ReleaseForeignURLIsNoop(t *testing.T) {
	arena, err := NewArena()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer arena.Close()

	if _, err := arena.Allocate(testFile("a.jpg")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// A remote URL passed in by mistake is never released.
	arena.Release("https://cdn.example.com/a.jpg")

	if arena.Len() != 1 {
		t.Errorf("Expected 1 outstanding reference, got %d", arena.Len())
	}
}

func TestArena_CloseReleasesEverything(t *testing.T) {
	arena, err := NewArena()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var paths []string
	for _, name := range []string{"a.jpg", "b.png", "c.webp"} {
		h, err := arena.Allocate(testFile(name))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		paths = append(paths, h.path)
	}

	// Slots never explicitly removed by the user are still cleaned up.
	if err := arena.Close(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if arena.Len() != 0 {
		t.Errorf("Expected no outstanding references, got %d", arena.Len())
	}
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", p)
		}
	}
	if _, err := os.Stat(arena.dir); !os.IsNotExist(err) {
		t.Error("Expected session dir to be removed")
	}

	// Close twice is safe.
	if err := arena.Close(); err != nil {
		t.Errorf("Unexpected error on second close: %v", err)
	}
}

func TestArena_ReleaseAllKeepsArenaUsable(t *testing.T) {
	arena, err := NewArena()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer arena.Close()

	if _, err := arena.Allocate(testFile("a.jpg")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	arena.ReleaseAll()

	if arena.Len() != 0 {
		t.Errorf("Expected no outstanding references, got %d", arena.Len())
	}

	if _, err := arena.Allocate(testFile("b.jpg")); err != nil {
		t.Errorf("Expected arena to stay usable after ReleaseAll: %v", err)
	}
}
