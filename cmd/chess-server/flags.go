package main

import (
	"github.com/urfave/cli/v3"

	"github.com/park285/Cheese-PvP-chess/internal/config"
)

// configFlags mirrors the environment settings. Duration flags carry no env
// source because the environment also accepts plain seconds.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "listen", Usage: "listen address", Sources: cli.EnvVars("LISTEN_ADDR")},
		&cli.StringFlag{Name: "redis-url", Usage: "redis://host:port/db for games and tokens", Sources: cli.EnvVars("REDIS_URL")},
		&cli.StringFlag{Name: "database-url", Usage: "postgres DSN for the results archive", Sources: cli.EnvVars("DATABASE_URL")},
		&cli.DurationFlag{Name: "game-ttl", Usage: "idle lifetime of a stored game"},
		&cli.StringFlag{Name: "jwt-secret", Usage: "HS256 secret for auth tokens", Sources: cli.EnvVars("AUTH_JWT_SECRET")},
		&cli.StringFlag{Name: "auth-url", Usage: "remote token resolver base URL", Sources: cli.EnvVars("AUTH_HTTP_URL")},
		&cli.DurationFlag{Name: "auth-timeout", Usage: "remote token resolver timeout"},
		&cli.BoolFlag{Name: "render-board", Usage: "attach a PNG board to every state update", Sources: cli.EnvVars("RENDER_BOARD")},
		&cli.StringFlag{Name: "messages-dir", Usage: "directory of message catalog overrides", Sources: cli.EnvVars("MSG_OVERRIDE_DIR")},
		&cli.DurationFlag{Name: "ping-interval", Usage: "websocket keepalive period, 0 disables"},
		&cli.BoolFlag{Name: "metrics", Usage: "serve /metrics", Sources: cli.EnvVars("METRICS_ENABLED")},
	}
}

// loadConfig layers explicitly set flags over the environment defaults.
func loadConfig(cmd *cli.Command) (*config.AppConfig, error) {
	cfg := config.FromEnv()
	if cmd.IsSet("listen") {
		cfg.ListenAddr = cmd.String("listen")
	}
	if cmd.IsSet("redis-url") {
		cfg.RedisURL = cmd.String("redis-url")
	}
	if cmd.IsSet("database-url") {
		cfg.DatabaseURL = cmd.String("database-url")
	}
	if cmd.IsSet("game-ttl") {
		cfg.GameTTL = cmd.Duration("game-ttl")
	}
	if cmd.IsSet("jwt-secret") {
		cfg.AuthJWTSecret = cmd.String("jwt-secret")
	}
	if cmd.IsSet("auth-url") {
		cfg.AuthHTTPURL = cmd.String("auth-url")
	}
	if cmd.IsSet("auth-timeout") {
		cfg.AuthHTTPTimeout = cmd.Duration("auth-timeout")
	}
	if cmd.IsSet("render-board") {
		cfg.RenderBoard = cmd.Bool("render-board")
	}
	if cmd.IsSet("messages-dir") {
		cfg.MsgOverrideDir = cmd.String("messages-dir")
	}
	if cmd.IsSet("ping-interval") {
		cfg.WSPingInterval = cmd.Duration("ping-interval")
	}
	if cmd.IsSet("metrics") {
		cfg.MetricsEnabled = cmd.Bool("metrics")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
