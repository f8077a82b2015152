package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transitload.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadReadsAgencies(t *testing.T) {
	path := writeConfig(t, `
store_driver: memory
workdir: /var/lib/transitload
agencies:
  - key: metro
    url: https://metro.example/gtfs.zip
  - key: caltrain
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != "memory" || cfg.WorkDir != "/var/lib/transitload" {
		t.Errorf("scalars not read: %+v", cfg)
	}
	if len(cfg.Agencies) != 2 {
		t.Fatalf("agencies=%d; want 2", len(cfg.Agencies))
	}
	if cfg.Agencies[0].Key != "metro" || cfg.Agencies[0].URL != "https://metro.example/gtfs.zip" {
		t.Errorf("first agency=%+v", cfg.Agencies[0])
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
agencies:
  - key: metro
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != "mysql" || cfg.WorkDir != "downloads" || cfg.LogLevel != "info" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadRequiresAgencies(t *testing.T) {
	path := writeConfig(t, "workdir: downloads\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error when no agencies are configured")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}
