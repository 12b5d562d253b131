package chess_test

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/Cheese-PvP-chess/internal/chess"
)

// reference builds the same position in corentings/chess. Our FEN never
// carries castling or en passant rights, so both generators agree on the
// move set.
func reference(t *testing.T, fen string) *nchess.Game {
	t.Helper()
	opt, err := nchess.FEN(fen)
	if err != nil {
		t.Fatalf("nchess.FEN(%q): %v", fen, err)
	}
	return nchess.NewGame(opt)
}

func ourMoves(g *chess.Game) []string {
	var out []string
	for _, m := range g.LegalMoves(g.Turn()) {
		out = append(out, m.UCI())
	}
	sort.Strings(out)
	return out
}

func refMoves(g *nchess.Game) []string {
	var out []string
	for _, m := range g.ValidMoves() {
		out = append(out, strings.ToLower(m.String()))
	}
	sort.Strings(out)
	return out
}

func compare(t *testing.T, g *chess.Game) {
	t.Helper()
	fen := g.FEN()
	ref := reference(t, fen)
	ours, theirs := ourMoves(g), refMoves(ref)
	if strings.Join(ours, " ") != strings.Join(theirs, " ") {
		t.Fatalf("move sets differ for %s\nours:   %v\ntheirs: %v", fen, ours, theirs)
	}
	method := ref.Position().Status()
	switch g.Status().Kind {
	case chess.Checkmate:
		if method != nchess.Checkmate {
			t.Fatalf("%s: we say checkmate, reference says %v", fen, method)
		}
	case chess.Stalemate:
		if method != nchess.Stalemate {
			t.Fatalf("%s: we say stalemate, reference says %v", fen, method)
		}
	case chess.InProgress:
		if method == nchess.Checkmate || method == nchess.Stalemate {
			t.Fatalf("%s: we say in progress, reference says %v", fen, method)
		}
	}
}

func TestLegalMovesMatchReferencePositions(t *testing.T) {
	fens := []string{
		chess.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w - - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w - - 1 8",
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w - - 1 3",
		"7k/5Q1p/7P/8/8/8/8/K7 b - - 0 21",
	}
	for _, fen := range fens {
		g, err := chess.GameFromFEN(fen)
		if err != nil {
			t.Fatalf("GameFromFEN(%q): %v", fen, err)
		}
		compare(t, g)
	}
}

func TestRandomGamesMatchReference(t *testing.T) {
	r := rand.New(rand.NewSource(2024))
	for game := 0; game < 15; game++ {
		g := chess.NewGame()
		for ply := 0; ply < 80; ply++ {
			compare(t, g)
			if g.Status().Terminal() {
				break
			}
			legal := g.LegalMoves(g.Turn())
			if err := g.MakeMove(legal[r.Intn(len(legal))]); err != nil {
				t.Fatalf("MakeMove: %v", err)
			}
		}
	}
}
