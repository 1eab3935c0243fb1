package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadReadsYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
server:
  port: "9090"
redis:
  addr: "localhost:6379"
  ttl: 30m
quiz:
  time_limit: 45
  set_size: 10
generator:
  api_key: from-file
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("GENERATOR_API_KEY", "from-env")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Quiz.TimeLimit != 45 || cfg.Quiz.SetSize != 10 {
		t.Fatalf("unexpected quiz section %+v", cfg.Quiz)
	}
	if cfg.Generator.APIKey != "from-env" {
		t.Fatalf("expected env api key, got %q", cfg.Generator.APIKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTTLDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Minute},
		{"90s", 90 * time.Second},
		{"garbage", time.Minute},
		{"0", 0},
	}
	for _, tc := range cases {
		if got := TTLDuration(tc.raw, time.Minute); got != tc.want {
			t.Fatalf("%q: expected %v, got %v", tc.raw, tc.want, got)
		}
	}
}

func TestIntOr(t *testing.T) {
	if IntOr(0, 20) != 20 || IntOr(-3, 20) != 20 || IntOr(7, 20) != 7 {
		t.Fatalf("IntOr fallback mismatch")
	}
}
