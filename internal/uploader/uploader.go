// Package uploader turns a draft change-set into remote state: parallel
// uploads of new images, best-effort background deletion of removed ones, and
// a final URL list ordered by slot position rather than completion order.
package uploader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/solara-app/mediakit/internal/config"
	"github.com/solara-app/mediakit/internal/journal"
	"github.com/solara-app/mediakit/internal/model"
	"github.com/solara-app/mediakit/internal/storage"
)

var uploadLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	uploadLogger = l
}

const deleteTimeout = 30 * time.Second

type Orchestrator struct {
	store storage.Storage

	// journal may be nil; then orphans are only logged.
	journal *journal.Journal

	deletes sync.WaitGroup
}

func New(store storage.Storage, j *journal.Journal) *Orchestrator {
	return &Orchestrator{store: store, journal: j}
}

// UploadImages persists a change-set and returns the final ordered URL list.
//
// With no changes it returns the current remote URLs without any network call,
// defensively dropping anything that is not a remote URL. Otherwise all new
// images upload concurrently; deletions run in the background and never fail
// the save. If any upload fails the whole call fails - callers see nothing
// partial - and uploads that did succeed are journaled for cleanup rather than
// compensated inline.
func (o *Orchestrator) UploadImages(ctx context.Context, cs model.ChangeSet) ([]string, error) {
	if !cs.HasChanges {
		return remoteURLs(cs.FinalOrder), nil
	}

	// Deletions are fire-and-forget relative to this call's result: they get
	// their own context so returning early cannot cancel them.
	for _, url := range cs.DeletedURLs {
		o.deletes.Add(1)
		go func(url string) {
			defer o.deletes.Done()
			o.deleteQuietly(url, "removed from profile")
		}(url)
	}

	uploaded := make(map[model.SlotID]string, len(cs.NewImages))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, ni := range cs.NewImages {
		ni := ni
		g.Go(func() error {
			url, err := o.store.Upload(gctx, ni.File)
			if err != nil {
				return fmt.Errorf(config.ErrUploadFailedFmt, ni.File.Name, err)
			}
			mu.Lock()
			uploaded[ni.ID] = url
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// No inline compensation: siblings that made it are recorded as
		// cleanup debt so the sweep can reclaim them.
		mu.Lock()
		for _, url := range uploaded {
			o.journalOrphan(url, "orphaned by failed save")
		}
		mu.Unlock()
		return nil, err
	}

	// Position comes from the slot order, never from completion order.
	final := make([]string, 0, len(cs.FinalOrder))
	for _, slot := range cs.FinalOrder {
		switch {
		case slot.IsNew:
			if url, ok := uploaded[slot.ID]; ok {
				final = append(final, url)
			} else {
				// Unresolvable slots are dropped, never emitted as a
				// dangling local reference.
				uploadLogger.Warn().Str("slot", string(slot.ID)).Msg("New slot missing uploaded URL, dropping")
			}
		case slot.OriginalURL != "":
			final = append(final, slot.OriginalURL)
		}
	}

	return final, nil
}

// Flush waits for outstanding background deletions. Binaries call this before
// exiting; the save path never does.
func (o *Orchestrator) Flush() {
	o.deletes.Wait()
}

func (o *Orchestrator) deleteQuietly(url, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()

	if err := o.store.Delete(ctx, url); err != nil {
		uploadLogger.Warn().Err(err).Str("url", url).Msg("Background deletion failed")
		o.journalOrphan(url, reason)
	}
}

func (o *Orchestrator) journalOrphan(url, reason string) {
	if o.journal == nil {
		uploadLogger.Warn().Str("url", url).Str("reason", reason).Msg("Orphaned remote object (no journal configured)")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.journal.Record(ctx, url, reason) // Record logs its own failures
}

// remoteURLs filters the slot list down to resolvable remote URLs, dropping
// local preview references that should never leave the process.
func remoteURLs(slots []model.DraftImage) []string {
	urls := make([]string, 0, len(slots))
	for _, slot := range slots {
		if slot.OriginalURL != "" {
			urls = append(urls, slot.OriginalURL)
		}
	}
	return urls
}
