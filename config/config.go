// Package config loads dashtodo settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"dashtodo/store"
)

// BackendEnv overrides the configured storage backend.
const BackendEnv = "DASHTODO_BACKEND"

type Config struct {
	DataDir string `toml:"data_dir"`
	Backend string `toml:"backend"`
	LogFile string `toml:"log_file"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		DataDir: defaultDataDir(),
		Backend: store.KindFile,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/dashtodo/config.toml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(dir, "dashtodo", "config.toml")
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(dir, "dashtodo")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("parse config %s: unknown key %q", path, undecoded[0].String())
		}
	}

	if v := strings.TrimSpace(os.Getenv(BackendEnv)); v != "" {
		cfg.Backend = v
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend == "" {
		cfg.Backend = store.KindFile
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.LogFile = expandHome(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the backend kind.
func (c Config) Validate() error {
	switch c.Backend {
	case store.KindFile, store.KindSQLite, store.KindMemory:
		return nil
	default:
		return fmt.Errorf("invalid backend %q: want %s, %s or %s", c.Backend, store.KindFile, store.KindSQLite, store.KindMemory)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
