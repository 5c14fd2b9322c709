package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phroun/burst-sub000/config"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	want := config.Default()
	if cfg.Execution.MaxCycles != want.Execution.MaxCycles {
		t.Errorf("MaxCycles = %d, want default %d", cfg.Execution.MaxCycles, want.Execution.MaxCycles)
	}
	if cfg.Display.NumberFormat != want.Display.NumberFormat {
		t.Errorf("NumberFormat = %q, want default %q", cfg.Display.NumberFormat, want.Display.NumberFormat)
	}
}

func TestLoadFrom_MalformedFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, "this is not = valid [[[ toml")

	if _, err := config.LoadFrom(path); err == nil {
		t.Fatal("expected an error for a malformed config file")
	}
}

func TestSaveTo_ThenLoadFromRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burst", "config.toml")

	cfg := config.Default()
	cfg.Execution.MaxCycles = 42
	cfg.Display.NumberFormat = "dec"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Execution.MaxCycles != 42 {
		t.Errorf("MaxCycles = %d, want 42", loaded.Execution.MaxCycles)
	}
	if loaded.Display.NumberFormat != "dec" {
		t.Errorf("NumberFormat = %q, want dec", loaded.Display.NumberFormat)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
}
