package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`
	Rate    float64       `yaml:"rate" env:"TEST_RATE"`
	Backoff time.Duration `yaml:"backoff" env:"TEST_BACKOFF"`
}

func TestLoadFromYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http:\n  port: \"9000\"\nrate: 0.5\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TEST_RATE", "0.25")
	t.Setenv("TEST_BACKOFF", "1m30s")

	var cfg testConfig
	if err := Load(&cfg); err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTP.Port != "9000" {
		t.Fatalf("port = %q, want 9000 from yaml", cfg.HTTP.Port)
	}
	if cfg.Rate != 0.25 {
		t.Fatalf("rate = %v, want env override 0.25", cfg.Rate)
	}
	if cfg.Backoff != 90*time.Second {
		t.Fatalf("backoff = %v, want 1m30s", cfg.Backoff)
	}
}

func TestLoadNestedEnvKeys(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("HTTP_PORT", "7070")

	var cfg testConfig
	if err := Load(&cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != "7070" {
		t.Fatalf("port = %q, want 7070 from nested env key", cfg.HTTP.Port)
	}
}

func TestLoadRejectsNonPointer(t *testing.T) {
	if err := Load(testConfig{}); err == nil {
		t.Fatal("expected error for non-pointer target")
	}
	if err := Load(nil); err == nil {
		t.Fatal("expected error for nil target")
	}
}
