// Package model defines core data structures for the media draft and session layer.
package model

// SlotID identifies one position-independent slot in a draft. Generated locally,
// unique within a draft session.
type SlotID string

// File is a raw local file payload selected by the user but not yet uploaded.
type File struct {
	Name string
	MIME string
	Size int64
	Data []byte
}

// DraftImage is one slot in the editable gallery.
//
// A slot is either new (IsNew, PendingFile set, no OriginalURL) or existing
// (OriginalURL set, no pending file) - never both.
type DraftImage struct {
	ID SlotID

	// DisplayURL is always renderable without a network round trip: the remote
	// URL for existing images, a local preview reference for new ones.
	DisplayURL string

	// OriginalURL is set iff this slot corresponds to an image that already
	// exists remotely.
	OriginalURL string

	IsNew       bool
	PendingFile *File
}

// NewImage pairs a pending file with the slot it will fill once uploaded.
type NewImage struct {
	ID   SlotID
	File *File
}

// ChangeSet describes the delta between a draft and its last-synchronized
// remote state. It is derived on demand and never stored, so it cannot drift
// from the live draft.
type ChangeSet struct {
	NewImages   []NewImage
	DeletedURLs []string
	FinalOrder  []DraftImage
	HasChanges  bool
}
