package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not fail: %v", err)
	}

	if cfg.DBPath != "tobewise.sqlite" {
		t.Errorf("db path default = %q", cfg.DBPath)
	}
	if cfg.Collection != "quotes" {
		t.Errorf("collection default = %q", cfg.Collection)
	}
	if cfg.ExportDir != "export" {
		t.Errorf("export dir default = %q", cfg.ExportDir)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tobewise.yaml")
	content := "db_path: /tmp/custom.sqlite\nremote_url: https://quotes.example.com/api\ncollection: curated\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.DBPath != "/tmp/custom.sqlite" {
		t.Errorf("db path = %q", cfg.DBPath)
	}
	if cfg.RemoteURL != "https://quotes.example.com/api" {
		t.Errorf("remote url = %q", cfg.RemoteURL)
	}
	if cfg.Collection != "curated" {
		t.Errorf("collection = %q", cfg.Collection)
	}
	// Unset keys keep their defaults.
	if cfg.SeedPath != "data/quotes.json" {
		t.Errorf("seed path default lost: %q", cfg.SeedPath)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tobewise.yaml")
	if err := os.WriteFile(path, []byte("collection: fromfile\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("TOBEWISE_COLLECTION", "fromenv")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Collection != "fromenv" {
		t.Errorf("env should override file, got %q", cfg.Collection)
	}
}

func TestLoadRejectsInvalidRemoteURL(t *testing.T) {
	t.Setenv("TOBEWISE_REMOTE_URL", "not a url")

	if _, err := Load(""); err == nil {
		t.Error("expected validation error for malformed remote url")
	}
}
