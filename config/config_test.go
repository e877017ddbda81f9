package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileIsZeroValue(t *testing.T) {
	t.Setenv("TINY_EXCEL_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != "" || cfg.DefaultSheet != nil {
		t.Fatalf("expected zero-value config, got %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("TINY_EXCEL_CONFIG_DIR", t.TempDir())

	sheet := 2
	if err := Save(Config{ListenAddr: ":9000", DefaultSheet: &sheet}); err != nil {
		t.Fatalf("saving config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":9000")
	}
	if cfg.DefaultSheet == nil || *cfg.DefaultSheet != 2 {
		t.Errorf("DefaultSheet = %v, want 2", cfg.DefaultSheet)
	}
}

func TestDelete(t *testing.T) {
	t.Setenv("TINY_EXCEL_CONFIG_DIR", t.TempDir())

	if err := Save(Config{ListenAddr: ":9000"}); err != nil {
		t.Fatalf("saving config: %v", err)
	}
	if err := Delete(); err != nil {
		t.Fatalf("deleting config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("loading after delete: %v", err)
	}
	if cfg.ListenAddr != "" {
		t.Errorf("expected zero-value config after delete, got %+v", cfg)
	}

	// deleting a missing file is fine
	if err := Delete(); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestLoad_ConfigFileIsDirectory(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TINY_EXCEL_CONFIG_DIR", tmp)

	cfgPath := filepath.Join(tmp, "config.json")
	if err := os.Mkdir(cfgPath, 0o755); err != nil {
		t.Fatalf("setup config dir: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatalf("expected read error when config file is a directory")
	} else if os.IsNotExist(err) {
		t.Fatalf("expected non-ENOENT error, got %v", err)
	}
}
