package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	if err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if AppConfig.Media.MaxImages != 4 {
		t.Errorf("Expected default max_images 4, got %d", AppConfig.Media.MaxImages)
	}
	if AppConfig.Media.MaxFileSizeMB != 10 {
		t.Errorf("Expected default max_file_size_mb 10, got %d", AppConfig.Media.MaxFileSizeMB)
	}
	if AppConfig.Media.RemoteMaxFileSizeMB != 5 {
		t.Errorf("Expected default remote_max_file_size_mb 5, got %d", AppConfig.Media.RemoteMaxFileSizeMB)
	}
	if AppConfig.Session.RefreshTimeoutSeconds != 5 {
		t.Errorf("Expected default refresh timeout 5s, got %d", AppConfig.Session.RefreshTimeoutSeconds)
	}
	if AppConfig.Session.MaxAuthRetries != 1 {
		t.Errorf("Expected default retry budget 1, got %d", AppConfig.Session.MaxAuthRetries)
	}
	if AppConfig.Storage.Driver != "http" {
		t.Errorf("Expected default storage driver http, got %q", AppConfig.Storage.Driver)
	}
	if len(AppConfig.Media.AllowedMIMETypes) == 0 {
		t.Error("Expected default allowed MIME types")
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
media:
  max_images: 6
session:
  refresh_timeout_seconds: 10
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := LoadConfig(path); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if AppConfig.Media.MaxImages != 6 {
		t.Errorf("Expected max_images 6, got %d", AppConfig.Media.MaxImages)
	}
	if AppConfig.Session.RefreshTimeoutSeconds != 10 {
		t.Errorf("Expected refresh timeout 10s, got %d", AppConfig.Session.RefreshTimeoutSeconds)
	}

	// Untouched fields keep their defaults.
	if AppConfig.Media.MaxFileSizeMB != 10 {
		t.Errorf("Expected default max_file_size_mb 10, got %d", AppConfig.Media.MaxFileSizeMB)
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("media: [not: valid"), 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := LoadConfig(path); err == nil {
		t.Error("Expected parse error")
	}
}
