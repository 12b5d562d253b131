package pvpchess

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/Cheese-PvP-chess/internal/domain"
)

// Repository is the Postgres-backed Archive.
type Repository struct {
	db *sql.DB
}

const schema = `CREATE TABLE IF NOT EXISTS pvp_games (
    game_id       TEXT PRIMARY KEY,
    white_id      TEXT NOT NULL,
    black_id      TEXT NOT NULL,
    result        TEXT NOT NULL,
    result_method TEXT NOT NULL,
    moves_uci     JSONB NOT NULL,
    moves_san     JSONB NOT NULL,
    pgn           TEXT NOT NULL,
    started_at    TIMESTAMPTZ NOT NULL,
    ended_at      TIMESTAMPTZ NOT NULL,
    duration_ms   BIGINT NOT NULL
)`

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts a finished game. Records still in progress are ignored.
func (r *Repository) SaveResult(ctx context.Context, rec *Record) error {
	if r == nil || r.db == nil || rec == nil || !rec.Status.Terminal() {
		return nil
	}
	row := Archived(rec)
	movesUCIRaw, _ := json.Marshal(row.MovesUCI)
	movesSANRaw, _ := json.Marshal(row.MovesSAN)

	q := `INSERT INTO pvp_games (
        game_id, white_id, black_id,
        result, result_method, moves_uci, moves_san, pgn,
        started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
      ) ON CONFLICT (game_id) DO UPDATE SET
        result=EXCLUDED.result,
        result_method=EXCLUDED.result_method,
        moves_uci=EXCLUDED.moves_uci,
        moves_san=EXCLUDED.moves_san,
        pgn=EXCLUDED.pgn,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err := r.db.ExecContext(ctx, q,
		row.GameID, row.WhiteID, row.BlackID,
		row.Result, row.Method, string(movesUCIRaw), string(movesSANRaw), row.PGN,
		row.StartedAt, row.EndedAt, row.Duration.Milliseconds(),
	)
	return err
}

// Recent returns the participant's latest finished games, newest first.
func (r *Repository) Recent(ctx context.Context, participant string, limit int) ([]*domain.ArchivedGame, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT game_id, white_id, black_id, result, result_method,
        moves_uci, moves_san, pgn, started_at, ended_at, duration_ms
      FROM pvp_games WHERE white_id = $1 OR black_id = $1
      ORDER BY ended_at DESC LIMIT $2`, participant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ArchivedGame
	for rows.Next() {
		var (
			g          domain.ArchivedGame
			uci, san   []byte
			durationMs int64
		)
		if err := rows.Scan(&g.GameID, &g.WhiteID, &g.BlackID, &g.Result, &g.Method,
			&uci, &san, &g.PGN, &g.StartedAt, &g.EndedAt, &durationMs); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(uci, &g.MovesUCI)
		_ = json.Unmarshal(san, &g.MovesSAN)
		g.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, &g)
	}
	return out, rows.Err()
}
