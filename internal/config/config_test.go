package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.WindowRadius != 300 {
		t.Errorf("WindowRadius = %d", cfg.WindowRadius)
	}
	if cfg.BatchSize != 3 {
		t.Errorf("BatchSize = %d", cfg.BatchSize)
	}
	if cfg.S2MinDelay() != time.Second {
		t.Errorf("S2MinDelay = %v", cfg.S2MinDelay())
	}
	if cfg.S2Cooldown() != 30*time.Second {
		t.Errorf("S2Cooldown = %v", cfg.S2Cooldown())
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := "window_radius: 150\nbatch_size: 5\ngrobid_url: http://grobid:8070\n"
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WindowRadius != 150 {
		t.Errorf("WindowRadius = %d, want override", cfg.WindowRadius)
	}
	if cfg.BatchSize != 5 {
		t.Errorf("BatchSize = %d, want override", cfg.BatchSize)
	}
	if cfg.GrobidURL != "http://grobid:8070" {
		t.Errorf("GrobidURL = %q", cfg.GrobidURL)
	}
	// Untouched fields keep their defaults.
	if cfg.SampleCap != 50 {
		t.Errorf("SampleCap = %d, want default 50", cfg.SampleCap)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WindowRadius != 300 {
		t.Errorf("empty path should yield defaults")
	}

	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BatchSize != 3 {
		t.Errorf("missing file should yield defaults")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	cfg := Default()
	cfg.ConfidenceFloor = 0.4
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ConfidenceFloor != 0.4 {
		t.Errorf("ConfidenceFloor = %v", loaded.ConfidenceFloor)
	}
}

func TestPathHelpers(t *testing.T) {
	root := "/workspace"
	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"DataPath", DataPath, "/workspace/.citegraph"},
		{"ConfigPath", ConfigPath, "/workspace/.citegraph/config.yml"},
		{"DBPath", DBPath, "/workspace/.citegraph/papers.db"},
		{"GraphPath", GraphPath, "/workspace/.citegraph/graph.json"},
		{"PapersPath", PapersPath, "/workspace/.citegraph/papers.jsonl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(root); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvGrobidURL, "http://example:9000")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.GrobidURL != "http://example:9000" {
		t.Errorf("GrobidURL = %q, want env override", cfg.GrobidURL)
	}
}
