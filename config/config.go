// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: Engine configuration with a JSON file store.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/termweave/termweave/checkpoint"
	"github.com/termweave/termweave/scrollback"
)

const configName = "termweave.json"

// Config is the full engine configuration.
type Config struct {
	Rows         int               `json:"rows"`
	Cols         int               `json:"cols"`
	Scrollback   scrollback.Config `json:"scrollback"`
	Checkpoint   checkpoint.Config `json:"checkpoint"`
	SearchDBPath string            `json:"search_db_path"`
	LogPath      string            `json:"log_path"`
}

// Default returns the configuration used when no file exists, rooted
// in the user data directory.
func Default() Config {
	root := dataRoot()
	return Config{
		Rows:         24,
		Cols:         80,
		Scrollback:   scrollback.DefaultConfig(),
		Checkpoint:   checkpoint.DefaultConfig(filepath.Join(root, "checkpoints")),
		SearchDBPath: filepath.Join(root, "search.db"),
		LogPath:      filepath.Join(root, "termweave.log"),
	}
}

func dataRoot() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "termweave")
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	return filepath.Join(dataRoot(), configName)
}

// Load reads a configuration file. A missing file yields Default()
// without error; a malformed file is an explicit error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Rows < 1 {
		cfg.Rows = 24
	}
	if cfg.Cols < 1 {
		cfg.Cols = 80
	}
	return cfg, nil
}

// Save writes cfg as indented JSON, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
