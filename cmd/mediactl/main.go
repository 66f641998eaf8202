// mediactl drives a full draft edit + save round trip against the configured
// backend. It is the wiring reference for embedding the client core.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/solara-app/mediakit/internal/authfetch"
	"github.com/solara-app/mediakit/internal/blobref"
	"github.com/solara-app/mediakit/internal/bridge"
	"github.com/solara-app/mediakit/internal/config"
	"github.com/solara-app/mediakit/internal/draft"
	"github.com/solara-app/mediakit/internal/journal"
	"github.com/solara-app/mediakit/internal/logger"
	"github.com/solara-app/mediakit/internal/model"
	"github.com/solara-app/mediakit/internal/session"
	"github.com/solara-app/mediakit/internal/storage"
	"github.com/solara-app/mediakit/internal/uploader"
	"github.com/solara-app/mediakit/internal/validate"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	initial := flag.String("initial", "", "comma-separated remote URLs the profile currently has")
	save := flag.Bool("save", false, "persist the draft instead of just printing the change-set")
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
	blobref.SetLogger(l)
	draft.SetLogger(l)
	bridge.SetLogger(l)
	session.SetLogger(l)
	authfetch.SetLogger(l)
	storage.SetLogger(l)
	journal.SetLogger(l)
	uploader.SetLogger(l)

	jar, err := cookiejar.New(nil)
	if err != nil {
		l.Fatal().Err(err).Msg("Failed to create cookie jar")
	}
	httpClient := &http.Client{Jar: jar, Timeout: 60 * time.Second}

	// Session refresh is delegated to the host when one is configured,
	// otherwise it goes straight to the backend.
	var hostBridge bridge.Bridge
	var refresher session.Refresher
	if cfg.Session.HostBridgeURL != "" {
		ws, err := bridge.DialWS(cfg.Session.HostBridgeURL)
		if err != nil {
			l.Fatal().Err(err).Str("url", cfg.Session.HostBridgeURL).Msg("Failed to reach host bridge")
		}
		defer ws.Close()
		hostBridge = ws
		refresher = session.NewBridgeRefresher(ws, time.Duration(cfg.Session.RefreshTimeoutSeconds)*time.Second)
	} else {
		refresher = session.NewAPIRefresher(httpClient, cfg.Backend.BaseURL+cfg.Backend.RefreshPath)
	}

	logout := authfetch.NewLogoutHandler(httpClient,
		cfg.Backend.BaseURL+cfg.Backend.SessionPath,
		hostBridge,
		cfg.Backend.LoginURL,
		func(url string) {
			l.Info().Str("url", url).Msg("Session expired, navigate to login")
		})

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

	orchestrator := uploader.New(store, cleanup)

	var initialURLs []string
	if *initial != "" {
		initialURLs = strings.Split(*initial, ",")
	}

	gallery, err := draft.NewStore(initialURLs, validate.PolicyFromConfig(cfg.Media))
	if err != nil {
		l.Fatal().Err(err).Msg("Failed to start edit session")
	}
	defer gallery.Close()

	for i, path := range flag.Args() {
		f, err := readFile(path)
		if err != nil {
			l.Fatal().Err(err).Str("path", path).Msg("Failed to read image")
		}
		if err := gallery.AddImage(f, len(initialURLs)+i); err != nil {
			l.Fatal().Str("path", path).Str("reason", err.Error()).Msg("Image rejected")
		}
	}

	changes := gallery.Changes()
	l.Info().
		Int("new_images", len(changes.NewImages)).
		Int("deleted", len(changes.DeletedURLs)).
		Bool("has_changes", changes.HasChanges).
		Msg("Change-set computed")

	if !*save {
		for i, slot := range changes.FinalOrder {
			fmt.Printf("%d: %s (new=%v)\n", i, slot.DisplayURL, slot.IsNew)
		}
		return
	}

	urls, err := orchestrator.UploadImages(context.Background(), changes)
	if err != nil {
		l.Fatal().Err(err).Msg("Save failed")
	}
	orchestrator.Flush()

	for i, url := range urls {
		fmt.Printf("%d: %s\n", i, url)
	}
}

func readFile(path string) (*model.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &model.File{
		Name: filepath.Base(path),
		MIME: mimeFromExt(filepath.Ext(path)),
		Size: int64(len(data)),
		Data: data,
	}, nil
}

func mimeFromExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return ""
	}
}
