package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	ListenAddr string

	RedisURL    string
	DatabaseURL string
	GameTTL     time.Duration

	AuthJWTSecret   string
	AuthHTTPURL     string
	AuthHTTPTimeout time.Duration

	RenderBoard    bool
	MsgOverrideDir string
	WSPingInterval time.Duration
	MetricsEnabled bool
}

// LoadDotEnv loads the given files (default ".env") into the environment
// without overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// Load reads the environment and validates the result.
func Load() (*AppConfig, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads the environment over the defaults without validating, so
// callers can layer flags on top before calling Validate.
func FromEnv() *AppConfig {
	cfg := &AppConfig{
		ListenAddr:      ":8080",
		GameTTL:         24 * time.Hour,
		AuthHTTPTimeout: 3 * time.Second,
		WSPingInterval:  30 * time.Second,
		MetricsEnabled:  true,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.AuthJWTSecret = strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET"))
	cfg.AuthHTTPURL = strings.TrimSpace(os.Getenv("AUTH_HTTP_URL"))
	cfg.MsgOverrideDir = strings.TrimSpace(os.Getenv("MSG_OVERRIDE_DIR"))

	if v := strings.TrimSpace(os.Getenv("GAME_TTL")); v != "" {
		if d, ok := parseDuration(v); ok {
			cfg.GameTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("AUTH_HTTP_TIMEOUT")); v != "" {
		if d, ok := parseDuration(v); ok {
			cfg.AuthHTTPTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("WS_PING_INTERVAL")); v != "" {
		if d, ok := parseDuration(v); ok {
			cfg.WSPingInterval = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("RENDER_BOARD")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RenderBoard = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("METRICS_ENABLED")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MetricsEnabled = b
		}
	}
	return cfg
}

// Validate checks settings that cannot be defaulted.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("LISTEN_ADDR is required")
	}
	if c.AuthJWTSecret == "" && c.AuthHTTPURL == "" && c.RedisURL == "" {
		return errors.New("one of AUTH_JWT_SECRET, AUTH_HTTP_URL or REDIS_URL is required to resolve auth tokens")
	}
	if c.GameTTL <= 0 {
		return errors.New("GAME_TTL must be positive")
	}
	return nil
}

// parseDuration accepts Go durations ("90s", "1h") or plain seconds.
func parseDuration(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d, true
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}
