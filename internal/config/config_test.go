package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Practice.Set != nil {
		t.Fatalf("expected empty config")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[practice]
set = "dakuten"
focus-weak = true
weak-top = 5
seed = 42

[stats]
curve-window = 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Practice.Set == nil || *cfg.Practice.Set != "dakuten" {
		t.Fatalf("unexpected set: %v", cfg.Practice.Set)
	}
	if cfg.Practice.FocusWeak == nil || !*cfg.Practice.FocusWeak {
		t.Fatalf("expected focus-weak true")
	}
	if cfg.Practice.WeakTop == nil || *cfg.Practice.WeakTop != 5 {
		t.Fatalf("unexpected weak-top: %v", cfg.Practice.WeakTop)
	}
	if cfg.Practice.Seed == nil || *cfg.Practice.Seed != 42 {
		t.Fatalf("unexpected seed: %v", cfg.Practice.Seed)
	}
	if cfg.Practice.WeakWindow != nil {
		t.Fatalf("expected weak-window unset")
	}
	if cfg.Stats.CurveWindow == nil || *cfg.Stats.CurveWindow != 3 {
		t.Fatalf("unexpected curve-window: %v", cfg.Stats.CurveWindow)
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nlang = \"en\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "kanadrill", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "kanadrill", "kanadrill.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
	if got := DefaultVocabDir(); got != filepath.Join("/cfg", "kanadrill", "vocab") {
		t.Fatalf("unexpected vocab dir: %s", got)
	}
}
