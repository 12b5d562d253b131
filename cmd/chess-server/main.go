package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/park285/Cheese-PvP-chess/internal/app"
	"github.com/park285/Cheese-PvP-chess/internal/config"
	"github.com/park285/Cheese-PvP-chess/internal/obslog"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = obslog.L().Sync() }()

	root := &cli.Command{
		Name:  "chess-server",
		Usage: "multiplayer chess over websockets",
		Flags: configFlags(),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the websocket server",
				Action: serve,
			},
			{
				Name:      "create-game",
				Usage:     "create a game and print a token for each player",
				ArgsUsage: "<white-id> <black-id>",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "token-ttl", Value: 24 * time.Hour, Usage: "lifetime of issued JWT tokens"},
				},
				Action: createGame,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.Run(ctx, os.Args); err != nil {
		obslog.L().Error("command_failed", zap.Error(err))
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := obslog.L()
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	logger.Info("server_starting",
		zap.String("addr", cfg.ListenAddr),
		zap.Bool("redis", cfg.RedisURL != ""),
		zap.Bool("archive_db", cfg.DatabaseURL != ""),
		zap.Bool("render_board", cfg.RenderBoard),
	)
	return a.Server.ListenAndServe(ctx)
}

func createGame(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return fmt.Errorf("usage: create-game <white-id> <black-id>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, obslog.L())
	if err != nil {
		return err
	}
	defer a.Close()

	white, black := cmd.Args().Get(0), cmd.Args().Get(1)
	rec, err := a.Service.CreateGame(ctx, white, black)
	if err != nil {
		return err
	}
	ttl := cmd.Duration("token-ttl")
	whiteTok, err := a.IssueToken(ctx, white, ttl)
	if err != nil {
		return fmt.Errorf("issue token for %s: %w", white, err)
	}
	blackTok, err := a.IssueToken(ctx, black, ttl)
	if err != nil {
		return fmt.Errorf("issue token for %s: %w", black, err)
	}
	fmt.Printf("game:  %s\n", rec.ID)
	fmt.Printf("white: %s token=%s\n", white, whiteTok)
	fmt.Printf("black: %s token=%s\n", black, blackTok)
	if cfg.RedisURL == "" {
		fmt.Println("note: REDIS_URL is not set, the game only lived in this process")
	}
	return nil
}
