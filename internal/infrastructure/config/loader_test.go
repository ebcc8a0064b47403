package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/promptline/assets"
	"github.com/doeshing/promptline/internal/domain"
)

func TestLoadWritesEmbeddedDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if string(data) != string(assets.DefaultConfigYAML) {
		t.Fatal("written config differs from the embedded default")
	}
	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.RenderMode() != domain.ModeExtended || cfg.TTLFor(domain.FactVersion) != 300 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadHydratesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "statusline:\n  default_mode: minimal\ncache:\n  ttl_seconds:\n    marker: 600\n"
	if err := os.WriteFile(path, []byte(partial), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.RenderMode() != domain.ModeMinimal {
		t.Fatalf("mode = %s", cfg.RenderMode())
	}
	if cfg.TTLFor(domain.FactMarker) != 600 || cfg.TTLFor(domain.FactVCSBranch) != domain.DefaultVCSTTLSeconds {
		t.Fatalf("ttl table = %v", cfg.Cache.TTLSeconds)
	}
	if cfg.Patch.PlaceholderVar != domain.DefaultPlaceholderVar || cfg.CacheMaxEntries() != domain.DefaultMaxCacheEntries {
		t.Fatalf("missing sections not hydrated: %+v", cfg)
	}
}

func TestLoadCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("statusline: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewFileLoader(path).Load(context.Background())
	if err == nil {
		t.Fatal("expected parse error")
	}
	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Fatalf("corrupt config should yield defaults (-want +got):\n%s", diff)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigPath, filepath.Join(dir, "custom.yaml"))
	t.Setenv(EnvStatuslineMode, "plain")
	t.Setenv(EnvCacheFile, filepath.Join(dir, "cache.json"))

	loader := NewFileLoader("")
	if loader.Path() != filepath.Join(dir, "custom.yaml") {
		t.Fatalf("Path() = %s", loader.Path())
	}
	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.RenderMode() != domain.ModePlain || cfg.Cache.File != filepath.Join(dir, "cache.json") {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestDefaultPathUnderStateDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PROMPTLINE_HOME", home)
	t.Setenv(EnvConfigPath, "")
	if got := NewFileLoader("").Path(); got != filepath.Join(home, "config.yaml") {
		t.Fatalf("Path() = %s", got)
	}
}
