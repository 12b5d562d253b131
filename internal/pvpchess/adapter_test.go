package pvpchess

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/park285/Cheese-PvP-chess/internal/chess"
)

func playOn(t *testing.T, r *Record, moves ...string) *chess.Game {
	t.Helper()
	g, err := r.Game()
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	for _, s := range moves {
		m, err := chess.ParseUCI(s)
		if err != nil {
			t.Fatalf("ParseUCI: %v", err)
		}
		if err := g.MakeMove(m); err != nil {
			t.Fatalf("MakeMove(%s): %v", s, err)
		}
		r.MovesUCI = append(r.MovesUCI, s)
	}
	r.Sync(g, time.Now())
	return g
}

func TestSyncCheckmate(t *testing.T) {
	r := NewRecord("g1", "alice", "bob", time.Now())
	g := playOn(t, r, "f2f3", "e7e5", "g2g4", "d8h4")
	if r.Status != StatusCheckmate || r.Outcome != OutcomeBlack || r.Winner != "bob" {
		t.Fatalf("record = %+v", r)
	}
	if r.Turn != White || r.Ply != 4 {
		t.Fatalf("turn=%s ply=%d", r.Turn, r.Ply)
	}
	st := ToState(r, g)
	if !st.InCheck || st.Status != "CHECKMATE" {
		t.Fatalf("state = %+v", st)
	}
	if st.Board[0][4] != "k" || st.Board[7][4] != "K" || st.Board[4][7] != "q" {
		t.Fatalf("board rows = %v", st.Board)
	}
}

func TestResignedRecordRebuildsTerminalGame(t *testing.T) {
	r := NewRecord("g2", "alice", "bob", time.Now())
	g := playOn(t, r, "e2e4")
	if err := g.Resign(chess.Black); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	r.Sync(g, time.Now())
	if r.Status != StatusResigned || r.Resigned != Black || r.Winner != "alice" || r.Outcome != OutcomeWhite {
		t.Fatalf("record = %+v", r)
	}
	rebuilt, err := r.Game()
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if st := rebuilt.Status(); st.Kind != chess.Resigned || st.Color != chess.Black {
		t.Fatalf("rebuilt status = %v", st)
	}
}

func TestColorOf(t *testing.T) {
	r := NewRecord("g3", "alice", "bob", time.Now())
	if c, ok := r.ColorOf("bob"); !ok || c != Black {
		t.Fatalf("bob = %v %v", c, ok)
	}
	if _, ok := r.ColorOf("carol"); ok {
		t.Fatalf("observer seated")
	}
	r.BlackID = ""
	if _, ok := r.ColorOf(""); ok {
		t.Fatalf("empty identity seated")
	}
}

func TestArchiveAndPGN(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewRecord("g4", "alice", "bob", start)
	r.MovesSAN = []string{"f3", "e5", "g4", "Qh4#"}
	r.Status = StatusCheckmate
	r.Outcome = OutcomeBlack
	r.UpdatedAt = start.Add(90 * time.Second)

	row := Archived(r)
	if row.Method != "checkmate" || row.Duration != 90*time.Second {
		t.Fatalf("row = %+v", row)
	}
	if !strings.Contains(row.PGN, "[Result \"0-1\"]") || !strings.HasSuffix(row.PGN, "1. f3 e5 2. g4 Qh4# 0-1") {
		t.Fatalf("pgn = %q", row.PGN)
	}

	a := NewMemoryArchive()
	ctx := context.Background()
	if err := a.SaveResult(ctx, r); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	_ = a.SaveResult(ctx, r)
	_ = a.SaveResult(ctx, NewRecord("active", "alice", "bob", start))
	got, _ := a.Recent(ctx, "alice", 10)
	if len(got) != 1 || got[0].GameID != "g4" {
		t.Fatalf("recent = %+v", got)
	}
}
