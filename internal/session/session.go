// Package session owns credential refresh: a single-flight coordinator in
// front of either the backend's refresh endpoint or the embedding host
// application's bridge.
package session

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var sessionLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	sessionLogger = l
}

// Refresher performs one actual credential refresh. Implementations report
// success as a boolean; an error means the attempt could not even complete.
type Refresher interface {
	Refresh(ctx context.Context) (bool, error)
}

// Coordinator guarantees at most one in-flight refresh regardless of how many
// concurrent callers request it. All callers of an in-flight refresh observe
// the same outcome.
type Coordinator struct {
	group     singleflight.Group
	refresher Refresher
}

func NewCoordinator(r Refresher) *Coordinator {
	return &Coordinator{refresher: r}
}

// RequestRefresh joins the in-flight refresh if there is one, otherwise starts
// it. The flight slot is cleared unconditionally when the refresh settles,
// success or failure.
func (c *Coordinator) RequestRefresh(ctx context.Context) bool {
	v, err, shared := c.group.Do("session-refresh", func() (interface{}, error) {
		ok, err := c.refresher.Refresh(ctx)
		if err != nil {
			return false, err
		}
		return ok, nil
	})
	if err != nil {
		sessionLogger.Warn().Err(err).Bool("shared", shared).Msg("Session refresh failed")
		return false
	}

	ok := v.(bool)
	sessionLogger.Debug().Bool("success", ok).Bool("shared", shared).Msg("Session refresh settled")
	return ok
}
