// Package storage abstracts where profile images physically live.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/solara-app/mediakit/internal/authfetch"
	"github.com/solara-app/mediakit/internal/config"
	"github.com/solara-app/mediakit/internal/model"
)

var storageLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storageLogger = l
}

type Storage interface {
	// Upload persists a file and returns its public URL.
	Upload(ctx context.Context, f *model.File) (string, error)

	// Delete removes the object behind url.
	Delete(ctx context.Context, url string) error
}

// FromConfig builds the configured storage driver. The authenticated client is
// only needed by the HTTP driver.
func FromConfig(cfg *config.Config, client *authfetch.Client) (Storage, error) {
	switch cfg.Storage.Driver {
	case "http":
		return NewHTTPStorage(client, cfg.Backend), nil
	case "s3":
		return NewS3Storage(cfg.Storage.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
