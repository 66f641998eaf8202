// Package draft implements the in-memory editable gallery: an ordered list of
// image slots reconciled against a remote source of truth.
//
// All edits (add, replace, remove, reorder) are local; no network calls happen
// until the caller asks for a change-set and hands it to the uploader. A remote
// URL removed from the slot list is tombstoned and never resurrected by later
// local edits - reconciliation is forward-only until the next Reset.
package draft

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/solara-app/mediakit/internal/blobref"
	"github.com/solara-app/mediakit/internal/config"
	"github.com/solara-app/mediakit/internal/model"
	"github.com/solara-app/mediakit/internal/validate"
)

var draftLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	draftLogger = l
}

type Store struct {
	mu sync.Mutex

	policy validate.Policy
	arena  *blobref.Arena

	initial []string // remote URLs at session start, in order
	slots   []model.DraftImage

	// tombstoned remote URLs; map for idempotent membership, slice for order
	deleted    []string
	deletedSet map[string]struct{}

	closed bool
}

// NewStore starts an edit session from the remote URL list. The list is
// truncated to the policy maximum if the remote state somehow exceeds it.
func NewStore(initialURLs []string, policy validate.Policy) (*Store, error) {
	arena, err := blobref.NewArena()
	if err != nil {
		return nil, err
	}

	s := &Store{
		policy: policy,
		arena:  arena,
	}
	s.initFromRemote(initialURLs)

	return s, nil
}

func (s *Store) initFromRemote(urls []string) {
	if len(urls) > s.policy.MaxImages {
		urls = urls[:s.policy.MaxImages]
	}

	s.initial = append([]string(nil), urls...)
	s.slots = make([]model.DraftImage, 0, len(urls))
	for _, u := range urls {
		s.slots = append(s.slots, model.DraftImage{
			ID:          model.SlotID(uuid.New().String()),
			DisplayURL:  u,
			OriginalURL: u,
		})
	}

	s.deleted = nil
	s.deletedSet = make(map[string]struct{})
}

// Images returns a copy of the current ordered slots.
func (s *Store) Images() []model.DraftImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.DraftImage(nil), s.slots...)
}

// AddImage validates the file and places it at index. An occupied index is
// replaced (releasing the old slot's preview reference and tombstoning its
// remote URL); an index at or past the end appends. Fails with a capacity
// error when the draft is full and index does not target an existing slot.
func (s *Store) AddImage(f *model.File, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New(config.ErrDraftTornDown)
	}
	if index < 0 {
		return errors.New(config.ErrInvalidSlotIdx)
	}

	if err := validate.Image(f, s.policy); err != nil {
		return err
	}

	replacing := index < len(s.slots)
	if !replacing && len(s.slots) >= s.policy.MaxImages {
		return fmt.Errorf(config.ErrDraftFullFmt, s.policy.MaxImages)
	}

	handle, err := s.arena.Allocate(f)
	if err != nil {
		return err
	}

	slot := model.DraftImage{
		ID:          model.SlotID(uuid.New().String()),
		DisplayURL:  handle.URL(),
		IsNew:       true,
		PendingFile: f,
	}

	if replacing {
		s.evict(s.slots[index])
		s.slots[index] = slot
	} else {
		s.slots = append(s.slots, slot)
	}

	// Hard cap, regardless of how the list got here.
	for len(s.slots) > s.policy.MaxImages {
		last := len(s.slots) - 1
		s.evict(s.slots[last])
		s.slots = s.slots[:last]
	}

	return nil
}

// RemoveImage removes the slot at index, tombstoning its remote URL or
// releasing its preview reference. No-op when index is out of range.
func (s *Store) RemoveImage(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || index < 0 || index >= len(s.slots) {
		return
	}

	s.evict(s.slots[index])
	s.slots = append(s.slots[:index], s.slots[index+1:]...)
}

// Reorder moves the slot at from to position to. Order is purely
// presentational until save: tombstones and IsNew flags are untouched.
// No-op when from == to or either index is out of range.
func (s *Store) Reorder(from, to int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || from == to {
		return
	}
	if from < 0 || from >= len(s.slots) || to < 0 || to >= len(s.slots) {
		return
	}

	slot := s.slots[from]
	s.slots = append(s.slots[:from], s.slots[from+1:]...)

	rest := append([]model.DraftImage(nil), s.slots[to:]...)
	s.slots = append(append(s.slots[:to:to], slot), rest...)
}

// evict retires a slot that is leaving the list: a remote image is tombstoned,
// a pending one has its preview reference released. The XOR invariant between
// OriginalURL and IsNew means exactly one branch applies.
func (s *Store) evict(slot model.DraftImage) {
	if slot.OriginalURL != "" {
		s.tombstone(slot.OriginalURL)
		return
	}
	s.arena.Release(slot.DisplayURL)
}

func (s *Store) tombstone(url string) {
	if _, ok := s.deletedSet[url]; ok {
		return
	}
	s.deletedSet[url] = struct{}{}
	s.deleted = append(s.deleted, url)
}

// Changes recomputes the change-set from the live state. It is never cached,
// so it can be called at any point in the edit session without staleness risk.
func (s *Store) Changes() model.ChangeSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newImages []model.NewImage
	for _, slot := range s.slots {
		if slot.IsNew {
			newImages = append(newImages, model.NewImage{ID: slot.ID, File: slot.PendingFile})
		}
	}

	return model.ChangeSet{
		NewImages:   newImages,
		DeletedURLs: append([]string(nil), s.deleted...),
		FinalOrder:  append([]model.DraftImage(nil), s.slots...),
		HasChanges:  hasChanges(s.initial, s.slots, s.deleted),
	}
}

// HasChanges reports whether the draft differs from its last-synchronized
// remote state.
func (s *Store) HasChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return hasChanges(s.initial, s.slots, s.deleted)
}

// hasChanges is a pure predicate over the three enumerable change kinds:
// something was removed, something was added, or the surviving remote images
// no longer line up with the initial list (reorder or truncation).
func hasChanges(initial []string, slots []model.DraftImage, deleted []string) bool {
	if len(deleted) > 0 {
		return true
	}

	for _, slot := range slots {
		if slot.IsNew {
			return true
		}
	}

	kept := make([]string, 0, len(slots))
	for _, slot := range slots {
		if slot.OriginalURL != "" {
			kept = append(kept, slot.OriginalURL)
		}
	}

	if len(kept) != len(initial) {
		return true
	}
	for i := range kept {
		if kept[i] != initial[i] {
			return true
		}
	}

	return false
}

// Reset discards every local edit: preview references are released, tombstones
// cleared, and the slots rebuilt from the initial remote list.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.arena.ReleaseAll()
	s.initFromRemote(s.initial)
}

// Close tears the session down, releasing every outstanding preview reference
// even for slots the user never explicitly removed. Safe to call twice.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.slots = nil

	if err := s.arena.Close(); err != nil {
		draftLogger.Warn().Err(err).Msg("Failed to tear down preview arena")
		return err
	}
	return nil
}
