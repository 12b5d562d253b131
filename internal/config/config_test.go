package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("AUTH_HTTP_TIMEOUT", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("GAME_TTL", "3600")
	t.Setenv("WS_PING_INTERVAL", "15s")
	t.Setenv("RENDER_BOARD", "true")
	t.Setenv("METRICS_ENABLED", "false")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.GameTTL != time.Hour || cfg.WSPingInterval != 15*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.RenderBoard || cfg.MetricsEnabled || cfg.AuthHTTPTimeout != 3*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRequiresAuthSource(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_HTTP_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without any auth source")
	}
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("AUTH_JWT_SECRET=fromfile\nLISTEN_ADDR=:9999\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("LISTEN_ADDR", ":7000")
	t.Setenv("AUTH_JWT_SECRET", "")
	os.Unsetenv("AUTH_JWT_SECRET")
	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("AUTH_JWT_SECRET") })
	if got := os.Getenv("AUTH_JWT_SECRET"); got != "fromfile" {
		t.Fatalf("AUTH_JWT_SECRET = %q", got)
	}
	if got := os.Getenv("LISTEN_ADDR"); got != ":7000" {
		t.Fatalf("existing LISTEN_ADDR overridden: %q", got)
	}
}
