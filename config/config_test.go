package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
	if cfg.Anchor != AnchorBottom {
		t.Errorf("default anchor = %v, want bottom", cfg.Anchor)
	}
	if cfg.LengthLimit != 100 {
		t.Errorf("default length limit = %d, want 100", cfg.LengthLimit)
	}
	if cfg.Timeout != 200*time.Millisecond {
		t.Errorf("default timeout = %v, want 200ms", cfg.Timeout)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("missing config file should not error, got: %v", err)
	}
	if cfg.LengthLimit != 100 {
		t.Errorf("expected default length limit, got %d", cfg.LengthLimit)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyviz.yaml")
	data := `
background: "#112233FF"
timeout_ms: 500
anchor: "top,left"
length_limit: 50
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Background != 0x112233FF {
		t.Errorf("background = %s, want #112233FF", cfg.Background)
	}
	if cfg.Timeout != 500*time.Millisecond {
		t.Errorf("timeout = %v, want 500ms", cfg.Timeout)
	}
	if !cfg.Anchor.Has(AnchorTop) || !cfg.Anchor.Has(AnchorLeft) || cfg.Anchor.Has(AnchorBottom) {
		t.Errorf("anchor = %v, want top+left only", cfg.Anchor)
	}
	if cfg.LengthLimit != 50 {
		t.Errorf("length limit = %d, want 50", cfg.LengthLimit)
	}
	// Untouched fields keep their defaults.
	if cfg.Foreground != 0xFFFFFFFF {
		t.Errorf("foreground should keep default, got %s", cfg.Foreground)
	}
}

func TestFlags_OverrideFileAndDefaults(t *testing.T) {
	cfg := Defaults()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fv := RegisterFlags(fs, cfg)

	if err := fs.Parse([]string{"-length-limit=10", "-anchor=right", "-timeout=999"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := fv.Apply(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if cfg.LengthLimit != 10 {
		t.Errorf("length limit = %d, want 10", cfg.LengthLimit)
	}
	if cfg.Anchor != AnchorRight {
		t.Errorf("anchor = %v, want right", cfg.Anchor)
	}
	if cfg.Timeout != 999*time.Millisecond {
		t.Errorf("timeout = %v, want 999ms", cfg.Timeout)
	}
}

func TestValidate_RejectsEmptyAnchor(t *testing.T) {
	cfg := Defaults()
	cfg.Anchor = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty anchor set")
	}
}
