// cleanup-sweep retries deletion of remote objects the save path could not
// clean up: failed background deletions and uploads orphaned by failed saves.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/solara-app/mediakit/internal/authfetch"
	"github.com/solara-app/mediakit/internal/config"
	"github.com/solara-app/mediakit/internal/journal"
	"github.com/solara-app/mediakit/internal/logger"
	"github.com/solara-app/mediakit/internal/session"
	"github.com/solara-app/mediakit/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file loaded")
	}

	if err := config.LoadConfig(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.AppConfig

	l := logger.New(cfg.Logging.Level)
	config.SetLogger(l)
	session.SetLogger(l)
	authfetch.SetLogger(l)
	storage.SetLogger(l)
	journal.SetLogger(l)

	jar, err := cookiejar.New(nil)
	if err != nil {
		l.Fatal().Err(err).Msg("Failed to create cookie jar")
	}
	httpClient := &http.Client{Jar: jar, Timeout: 60 * time.Second}

	refresher := session.NewAPIRefresher(httpClient, cfg.Backend.BaseURL+cfg.Backend.RefreshPath)
	logout := authfetch.NewLogoutHandler(httpClient,
		cfg.Backend.BaseURL+cfg.Backend.SessionPath, nil, cfg.Backend.LoginURL, nil)
	client := authfetch.New(httpClient, session.NewCoordinator(refresher), logout, cfg.Session.MaxAuthRetries)

	store, err := storage.FromConfig(cfg, client)
	if err != nil {
		l.Fatal().Err(err).Msg("Failed to build storage driver")
	}

	cleanup, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		l.Fatal().Err(err).Msg("Failed to open cleanup journal")
	}
	defer cleanup.Close()

	ctx := context.Background()

	entries, err := cleanup.Pending(ctx)
	if err != nil {
		l.Fatal().Err(err).Msg("Failed to list pending cleanups")
	}

	var swept, failed int
	for _, entry := range entries {
		if err := store.Delete(ctx, entry.URL); err != nil {
			l.Warn().Err(err).Str("url", entry.URL).Int("attempts", entry.Attempts).Msg("Cleanup still failing")
			_ = cleanup.Record(ctx, entry.URL, entry.Reason)
			failed++
			continue
		}

		if err := cleanup.Remove(ctx, entry.URL); err != nil {
			l.Warn().Err(err).Str("url", entry.URL).Msg("Deleted remotely but failed to clear journal entry")
		}
		swept++
	}

	l.Info().Int("swept", swept).Int("failed", failed).Msg("Sweep finished")
}
