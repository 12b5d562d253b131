// Package app wires configuration into a running game server.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/Cheese-PvP-chess/internal/auth"
	"github.com/park285/Cheese-PvP-chess/internal/config"
	"github.com/park285/Cheese-PvP-chess/internal/metrics"
	"github.com/park285/Cheese-PvP-chess/internal/msgcat"
	"github.com/park285/Cheese-PvP-chess/internal/pvpchess"
	"github.com/park285/Cheese-PvP-chess/internal/render"
	"github.com/park285/Cheese-PvP-chess/internal/service"
	"github.com/park285/Cheese-PvP-chess/internal/session"
	"github.com/park285/Cheese-PvP-chess/internal/transport/wsserver"
)

// App holds the wired components. Tokens and JWT are nil when their backend
// is not configured.
type App struct {
	Service *service.Service
	Server  *wsserver.Server
	Store   pvpchess.GameStore
	Archive pvpchess.Archive
	Tokens  *auth.RedisTokenStore
	JWT     *auth.JWTResolver
	Metrics *metrics.Metrics

	closers []func() error
}

const jwtIssuer = "cheese-pvp-chess"

func New(cfg *config.AppConfig, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	// Game store and opaque tokens share one Redis client when configured.
	var chain auth.Chain
	if strings.TrimSpace(cfg.RedisURL) != "" {
		opts, err := pvpchess.ParseRedisURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		a.closers = append(a.closers, rdb.Close)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		a.Store = pvpchess.NewRedisStoreFromClient(rdb, cfg.GameTTL)
		a.Tokens = auth.NewRedisTokenStore(rdb, cfg.GameTTL)
		chain = append(chain, a.Tokens)
	} else {
		logger.Warn("game_store_in_memory", zap.String("reason", "REDIS_URL not set"))
		a.Store = pvpchess.NewMemoryStore()
	}

	if cfg.AuthJWTSecret != "" {
		j, err := auth.NewJWTResolver(cfg.AuthJWTSecret, jwtIssuer)
		if err != nil {
			return nil, fmt.Errorf("init jwt: %w", err)
		}
		a.JWT = j
		chain = append(chain, j)
	}
	if cfg.AuthHTTPURL != "" {
		chain = append(chain, auth.NewHTTPResolver(cfg.AuthHTTPURL, auth.WithTimeout(cfg.AuthHTTPTimeout)))
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no auth token backend configured")
	}

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		repo, err := pvpchess.NewRepository(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init archive: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		a.Archive = repo
	} else {
		a.Archive = pvpchess.NewMemoryArchive()
	}

	catalog, err := msgcat.New(cfg.MsgOverrideDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	var renderer render.BoardRenderer
	if cfg.RenderBoard {
		renderer = render.NewPNGRenderer()
	}
	if cfg.MetricsEnabled {
		a.Metrics = metrics.New()
	}

	reg := session.NewRegistry()
	a.Service, err = service.New(service.Deps{
		Store:       a.Store,
		Auth:        chain,
		Registry:    reg,
		Broadcaster: session.NewBroadcaster(reg, logger.Named("broadcast"), a.Metrics),
		Catalog:     catalog,
		Archive:     a.Archive,
		Renderer:    renderer,
		Metrics:     a.Metrics,
		Logger:      logger.Named("service"),
	})
	if err != nil {
		return nil, err
	}
	a.Server = wsserver.New(wsserver.Config{
		Addr:         cfg.ListenAddr,
		PingInterval: cfg.WSPingInterval,
	}, a.Service, a.Archive, a.Metrics, logger.Named("ws"))

	ok = true
	return a, nil
}

// IssueToken mints a token for identity using the first configured issuer:
// the Redis token store, then JWT.
func (a *App) IssueToken(ctx context.Context, identity string, ttl time.Duration) (string, error) {
	switch {
	case a.Tokens != nil:
		return a.Tokens.Issue(ctx, identity)
	case a.JWT != nil:
		return a.JWT.Issue(identity, ttl)
	}
	return "", fmt.Errorf("no token issuer configured")
}

func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
