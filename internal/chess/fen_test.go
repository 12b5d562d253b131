package chess

import (
	"errors"
	"testing"
)

func TestStartFENRoundTrip(t *testing.T) {
	g := NewGame()
	if got := g.FEN(); got != StartFEN {
		t.Fatalf("FEN = %q", got)
	}
	g2, err := GameFromFEN(StartFEN)
	if err != nil {
		t.Fatalf("GameFromFEN: %v", err)
	}
	if g2.Board() != g.Board() || g2.Turn() != White || g2.Ply() != 0 {
		t.Fatalf("decoded start position differs")
	}
}

func TestFENAfterMoves(t *testing.T) {
	g := NewGame()
	play(t, g, "e2e4", "c7c5", "g1f3")
	want := "rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b - - 0 2"
	if got := g.FEN(); got != want {
		t.Fatalf("FEN = %q, want %q", got, want)
	}
	g2, err := GameFromFEN(want)
	if err != nil {
		t.Fatalf("GameFromFEN: %v", err)
	}
	if g2.Board() != g.Board() || g2.Turn() != Black || g2.Ply() != 3 {
		t.Fatalf("round trip: turn=%v ply=%d", g2.Turn(), g2.Ply())
	}
}

func TestDecodeFENIgnoresCastlingAndEnPassant(t *testing.T) {
	_, toMove, ply, err := DecodeFEN("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2")
	if err != nil {
		t.Fatalf("DecodeFEN: %v", err)
	}
	if toMove != White || ply != 2 {
		t.Fatalf("toMove=%v ply=%d", toMove, ply)
	}
}

func TestDecodeFENErrors(t *testing.T) {
	bad := []string{
		"",
		"8/8/8/8/8/8/8 w - - 0 1",
		"9/8/8/8/8/8/8/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 zero",
		"rnbqkbnr/ppppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
	}
	for _, fen := range bad {
		if _, _, _, err := DecodeFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Fatalf("DecodeFEN(%q) err = %v", fen, err)
		}
	}
}

func TestGameFromFENEvaluatesStatus(t *testing.T) {
	g, err := GameFromFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w - - 1 3")
	if err != nil {
		t.Fatalf("GameFromFEN: %v", err)
	}
	if st := g.Status(); st.Kind != Checkmate || st.Color != White {
		t.Fatalf("status = %v", st)
	}
}

func TestUCI(t *testing.T) {
	m, err := ParseUCI("E7E8Q")
	if err != nil {
		t.Fatalf("ParseUCI: %v", err)
	}
	if m.Start != Pos(7, 5) || m.End != Pos(8, 5) || m.Promotion != Queen {
		t.Fatalf("parsed %+v", m)
	}
	if m.UCI() != "e7e8q" {
		t.Fatalf("UCI = %q", m.UCI())
	}
	for _, s := range []string{"", "e2", "e2e9", "i2i4", "e7e8k", "e2e4e5"} {
		if _, err := ParseUCI(s); err == nil {
			t.Fatalf("ParseUCI(%q) accepted", s)
		}
	}
}

func TestParseSquareAndString(t *testing.T) {
	p, err := ParseSquare("a1")
	if err != nil || p != Pos(1, 1) {
		t.Fatalf("a1 = %v %v", p, err)
	}
	if Pos(8, 8).String() != "h8" || Pos(0, 3).String() != "(0,3)" {
		t.Fatalf("String mismatch")
	}
	if _, err := ParseSquare("z9"); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("z9 err = %v", err)
	}
}
