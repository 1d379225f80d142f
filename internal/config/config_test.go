package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: "9090"
redis:
  addr: "localhost:6379"
  stream: "analytics:test"
analytics:
  console: true
  endpoint: "https://collector.example"
  api_key: "secret"
bank:
  ttl: "5m"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Redis.Stream != "analytics:test" {
		t.Fatalf("expected stream, got %s", cfg.Redis.Stream)
	}
	if !cfg.Analytics.Console || cfg.Analytics.Endpoint != "https://collector.example" {
		t.Fatalf("unexpected analytics config %+v", cfg.Analytics)
	}
	if got := TTLDuration(cfg.Bank.TTL, time.Minute); got != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %v", got)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("not-a-duration", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback on parse error, got %v", got)
	}
}
