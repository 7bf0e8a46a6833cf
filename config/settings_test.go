package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := NewManager(path)

	settings, err := m.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if settings.Server.Port != DefaultSettings().Server.Port {
		t.Fatalf("expected default port, got %d", settings.Server.Port)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults were not written to disk: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := NewManager(path)

	settings := DefaultSettings()
	settings.Server.Port = 4000
	settings.Services.WatchlistURL = "http://watchlist:9000/api"
	if err := m.Save(settings); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := m.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Server.Port != 4000 {
		t.Fatalf("expected port 4000, got %d", loaded.Server.Port)
	}
	if loaded.Services.WatchlistURL != "http://watchlist:9000/api" {
		t.Fatalf("unexpected watchlist url: %s", loaded.Services.WatchlistURL)
	}
}

func TestLoadFillsMissingTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"server":{"host":"0.0.0.0","port":3500}}`), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	m := NewManager(path)
	settings, err := m.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if settings.Services.TimeoutSeconds <= 0 {
		t.Fatalf("timeout default not applied: %d", settings.Services.TimeoutSeconds)
	}
}
