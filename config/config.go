// Package config loads TOML-backed runtime configuration: execution
// limits, debugger display defaults, and trace/statistics output
// settings (SPEC_FULL.md §3, "Ambient additions"). Every field has a
// compiled-in default, so a missing or partial config file is never an
// error - only a malformed one is.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the complete set of runtime knobs an embedder of the VM,
// assembler and debugger may want to tune without a rebuild.
type Config struct {
	Execution struct {
		MaxCycles    uint64 `toml:"max_cycles"`
		MemorySize   uint32 `toml:"memory_size"`
		EnableTrace  bool   `toml:"enable_trace"`
		EnableStats  bool   `toml:"enable_stats"`
	} `toml:"execution"`

	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		ShowRegisters bool `toml:"show_registers"`
		ShowFlags     bool `toml:"show_flags"`
	} `toml:"debugger"`

	Display struct {
		BytesPerLine  int    `toml:"bytes_per_line"`
		DisasmContext int    `toml:"disasm_context"`
		NumberFormat  string `toml:"number_format"` // hex, dec
	} `toml:"display"`

	Trace struct {
		MaxEntries int `toml:"max_entries"`
	} `toml:"trace"`

	Statistics struct {
		CollectHotPath bool `toml:"collect_hotpath"`
	} `toml:"statistics"`
}

// Default returns a Config with every field set to its compiled-in
// default.
func Default() *Config {
	cfg := &Config{}

	cfg.Execution.MaxCycles = 10_000_000
	cfg.Execution.MemorySize = 1 << 20
	cfg.Execution.EnableTrace = false
	cfg.Execution.EnableStats = false

	cfg.Debugger.HistorySize = 500
	cfg.Debugger.ShowRegisters = true
	cfg.Debugger.ShowFlags = true

	cfg.Display.BytesPerLine = 16
	cfg.Display.DisasmContext = 8
	cfg.Display.NumberFormat = "hex"

	cfg.Trace.MaxEntries = 100_000

	cfg.Statistics.CollectHotPath = true

	return cfg
}

// Path returns the platform-specific config file location.
func Path() string {
	switch runtime.GOOS {
	case "windows":
		dir := os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(dir, "burst", "config.toml")
	case "darwin", "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		return filepath.Join(home, ".config", "burst", "config.toml")
	default:
		return "config.toml"
	}
}

// Load reads the default config file location, overlaying it onto
// Default(); a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads path, overlaying it onto Default(). A missing file
// returns the defaults unchanged; a malformed file is an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveTo writes cfg to path as TOML, creating its parent directory if
// needed.
func (c *Config) SaveTo(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("config: failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("config: failed to encode: %w", err)
	}
	return nil
}
