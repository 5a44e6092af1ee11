// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config_test.go
// Summary: Tests for the JSON configuration store.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	def := Default()
	if cfg.Rows != def.Rows || cfg.Cols != def.Cols {
		t.Errorf("Load missing = %dx%d, want defaults %dx%d", cfg.Rows, cfg.Cols, def.Rows, def.Cols)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "termweave.json")
	cfg := Default()
	cfg.Rows = 50
	cfg.Cols = 132
	cfg.SearchDBPath = "/tmp/custom.db"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Rows != 50 || got.Cols != 132 || got.SearchDBPath != "/tmp/custom.db" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestLoadMalformedIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load malformed config should fail")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"rows": 40}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rows != 40 {
		t.Errorf("Rows = %d, want 40", cfg.Rows)
	}
	if cfg.Cols != Default().Cols {
		t.Errorf("Cols = %d, want default", cfg.Cols)
	}
	if cfg.Scrollback.HotLines != Default().Scrollback.HotLines {
		t.Errorf("Scrollback defaults lost: %+v", cfg.Scrollback)
	}
}

func TestLoadClampsNonPositiveDims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.json")
	if err := os.WriteFile(path, []byte(`{"rows": 0, "cols": -3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rows < 1 || cfg.Cols < 1 {
		t.Errorf("dims not clamped: %dx%d", cfg.Rows, cfg.Cols)
	}
}
