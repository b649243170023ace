package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".charts-sync.yaml")
	raw := `upstream: rancher/fleet
charts:
  - fleet
  - fleet-crd
chartsDir: stable
retention:
  devVersionMaxAge: 72h
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.ApplyManifest(path); err != nil {
		t.Fatalf("ApplyManifest failed: %v", err)
	}

	if cfg.ChartsDir != "stable" {
		t.Errorf("ChartsDir = %q, want stable", cfg.ChartsDir)
	}
	if len(cfg.Charts) != 2 || cfg.Charts[0] != "fleet" {
		t.Errorf("Charts = %v", cfg.Charts)
	}
	if cfg.DevVersionMaxAge != 72*time.Hour {
		t.Errorf("DevVersionMaxAge = %v, want 72h", cfg.DevVersionMaxAge)
	}
	// Fields the manifest does not set keep their loaded values.
	if cfg.IndexPath != "index.yaml" {
		t.Errorf("IndexPath = %q, want index.yaml", cfg.IndexPath)
	}
}

func TestApplyManifest_MissingFileIsFine(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	before := cfg
	if err := cfg.ApplyManifest(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("ApplyManifest failed: %v", err)
	}
	if cfg.UpstreamRepo != before.UpstreamRepo || cfg.ChartsDir != before.ChartsDir {
		t.Error("config changed without a manifest")
	}
}

func TestApplyManifest_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".charts-sync.yaml")
	raw := "retention:\n  devVersionMaxAge: fortnight\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.ApplyManifest(path); err == nil {
		t.Fatal("expected an error for a bad retention duration")
	}
}
