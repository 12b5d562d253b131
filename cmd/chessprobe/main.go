package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/park285/Cheese-PvP-chess/internal/chess"
	"github.com/park285/Cheese-PvP-chess/internal/wsclient"
	"github.com/park285/Cheese-PvP-chess/pkg/chessdto"
)

func main() {
	cmd := &cli.Command{
		Name:  "chessprobe",
		Usage: "join a game, print what the server sends and optionally play one move",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "ws://localhost:8080/ws", Sources: cli.EnvVars("CHESS_WS_URL")},
			&cli.StringFlag{Name: "token", Required: true, Sources: cli.EnvVars("CHESS_TOKEN")},
			&cli.StringFlag{Name: "game", Required: true, Usage: "game id"},
			&cli.StringFlag{Name: "move", Usage: "UCI move to play after joining, e.g. e2e4"},
			&cli.BoolFlag{Name: "resign", Usage: "resign after joining"},
			&cli.DurationFlag{Name: "window", Value: 10 * time.Second, Usage: "how long to observe"},
		},
		Action: probe,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func probe(ctx context.Context, cmd *cli.Command) error {
	token, gameID := cmd.String("token"), cmd.String("game")

	ws := wsclient.New(cmd.String("url"), 3, time.Second)
	ws.OnStateChange(func(state wsclient.State) {
		log.Printf("WS state: %s", state)
	})
	joined := make(chan struct{}, 1)
	ws.OnMessage(func(msg *chessdto.ServerMessage) {
		switch msg.Type {
		case chessdto.MessageLoadGame:
			printState(msg.Game)
			select {
			case joined <- struct{}{}:
			default:
			}
		case chessdto.MessageNotification:
			fmt.Printf("* %s\n", msg.Message)
		case chessdto.MessageError:
			fmt.Printf("! %s (%s)\n", msg.ErrorMessage, msg.ErrorCode)
		}
	})

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := ws.Connect(cctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = ws.Close(context.Background()) }()

	if err := ws.Send(ctx, &chessdto.Command{Type: chessdto.CommandConnect, AuthToken: token, GameID: gameID}); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	window := time.NewTimer(cmd.Duration("window"))
	defer window.Stop()
	select {
	case <-joined:
	case <-window.C:
		return fmt.Errorf("no game state received")
	}

	if uci := cmd.String("move"); uci != "" {
		m, err := chess.ParseUCI(uci)
		if err != nil {
			return err
		}
		dto := &chessdto.MoveDTO{
			Start: chessdto.PositionDTO{Row: m.Start.Row, Col: m.Start.Col},
			End:   chessdto.PositionDTO{Row: m.End.Row, Col: m.End.Col},
		}
		if m.Promotion != chess.NoKind {
			dto.Promotion = m.Promotion.String()
		}
		if err := ws.Send(ctx, &chessdto.Command{Type: chessdto.CommandMakeMove, AuthToken: token, GameID: gameID, Move: dto}); err != nil {
			return fmt.Errorf("move: %w", err)
		}
	}
	if cmd.Bool("resign") {
		if err := ws.Send(ctx, &chessdto.Command{Type: chessdto.CommandResign, AuthToken: token, GameID: gameID}); err != nil {
			return fmt.Errorf("resign: %w", err)
		}
	}

	// Observe for the rest of the window.
	<-window.C
	return nil
}

func printState(g *chessdto.GameState) {
	if g == nil {
		return
	}
	var b strings.Builder
	for i, row := range g.Board {
		fmt.Fprintf(&b, "%d ", 8-i)
		for _, sq := range row {
			if sq == "" {
				sq = "."
			}
			b.WriteString(sq + " ")
		}
		b.WriteByte('\n')
	}
	b.WriteString("  a b c d e f g h\n")
	fmt.Print(b.String())
	fmt.Printf("game=%s status=%s turn=%s ply=%d check=%v\n", g.ID, g.Status, g.Turn, g.Ply, g.InCheck)
	if len(g.MovesSAN) > 0 {
		fmt.Printf("moves: %s\n", strings.Join(g.MovesSAN, " "))
	}
}
