package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ccam.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.SearchLimit != 10 || cfg.MinTokenLen != 3 {
		t.Errorf("defaults = limit %d, token len %d, want 10 and 3", cfg.SearchLimit, cfg.MinTokenLen)
	}
	if cfg.LogFormat != "text" || cfg.Addr != ":8080" {
		t.Errorf("defaults = format %q, addr %q", cfg.LogFormat, cfg.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadFromFile_MergesOverDefaults(t *testing.T) {
	path := writeConfig(t, "search_limit: 25\nsuggest_unknown: true\n")

	cfg := Default()
	if err := cfg.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.SearchLimit != 25 {
		t.Errorf("SearchLimit = %d, want 25", cfg.SearchLimit)
	}
	if !cfg.SuggestUnknown {
		t.Error("SuggestUnknown not set from file")
	}
	// Keys absent from the file keep their defaults.
	if cfg.MinTokenLen != 3 || cfg.IncludeRetired {
		t.Errorf("untouched keys changed: token len %d, include_retired %v", cfg.MinTokenLen, cfg.IncludeRetired)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	cfg := Default()
	if err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}

	cfg = Default()
	if err := cfg.LoadFromFile(writeConfig(t, "search_limit: [not a number\n")); err == nil {
		t.Error("malformed yaml accepted")
	}

	cfg = Default()
	if err := cfg.LoadFromFile(writeConfig(t, "min_token_len: -2\n")); err == nil {
		t.Error("out-of-range value accepted")
	}
}

func TestValidateSource(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateSource(); err == nil {
		t.Error("no source accepted")
	}

	cfg.DSN = "postgres://localhost/ccam"
	if err := cfg.ValidateSource(); err != nil {
		t.Errorf("dsn-only rejected: %v", err)
	}

	cfg.SnapshotDir = "/tmp/snap"
	if err := cfg.ValidateSource(); err == nil {
		t.Error("both sources accepted")
	}

	cfg.DSN = ""
	if err := cfg.ValidateSource(); err != nil {
		t.Errorf("snapshot-only rejected: %v", err)
	}
}
