package chess

import (
	"math/rand"
	"testing"
)

func place(t *testing.T, b *Board, sq string, c Color, k Kind) {
	t.Helper()
	p, err := ParseSquare(sq)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", sq, err)
	}
	if err := b.Set(p, Piece{Color: c, Kind: k}); err != nil {
		t.Fatalf("Set(%s): %v", sq, err)
	}
}

func sq(t *testing.T, s string) Position {
	t.Helper()
	p, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return p
}

func hasDest(moves []Move, to Position) bool {
	for _, m := range moves {
		if m.End == to {
			return true
		}
	}
	return false
}

// randomBoard scatters n pieces of both colors over the board.
func randomBoard(r *rand.Rand, n int) Board {
	var b Board
	for i := 0; i < n; i++ {
		c := White
		if r.Intn(2) == 1 {
			c = Black
		}
		b[r.Intn(64)] = Piece{Color: c, Kind: Kind(1 + r.Intn(6))}
	}
	return b
}

func TestBoardGetSetBounds(t *testing.T) {
	var b Board
	for _, p := range []Position{Pos(0, 1), Pos(9, 1), Pos(1, 0), Pos(1, 9)} {
		if _, err := b.Get(p); err == nil {
			t.Fatalf("Get(%v) expected ErrOutOfBounds", p)
		}
		if err := b.Set(p, Piece{White, Queen}); err == nil {
			t.Fatalf("Set(%v) expected ErrOutOfBounds", p)
		}
	}
	if err := b.Set(Pos(4, 4), Piece{White, Queen}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ := b.Get(Pos(4, 4))
	if got != (Piece{White, Queen}) {
		t.Fatalf("Get = %v", got)
	}
	_ = b.Set(Pos(4, 4), NoPiece)
	if got, _ := b.Get(Pos(4, 4)); !got.Empty() {
		t.Fatalf("square not cleared: %v", got)
	}
}

func TestBoardCopyIsIndependent(t *testing.T) {
	a := StartingBoard()
	b := a
	_ = b.Set(Pos(2, 5), NoPiece)
	if a == b {
		t.Fatalf("copy shares storage with original")
	}
	if p, _ := a.Get(Pos(2, 5)); p != (Piece{White, Pawn}) {
		t.Fatalf("original mutated: %v", p)
	}
}

func TestCandidatesStayInBounds(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		b := randomBoard(r, 12+r.Intn(20))
		for idx, piece := range b {
			if piece.Empty() {
				continue
			}
			from := positionAt(idx)
			for _, m := range PseudoLegalMoves(&b, from, piece.Color) {
				if !m.End.InBounds() {
					t.Fatalf("%v from %v: out-of-bounds candidate %v", piece, from, m)
				}
				if m.Start != from {
					t.Fatalf("candidate %v does not start at %v", m, from)
				}
				if target := b.at(m.End); !target.Empty() && target.Color == piece.Color {
					t.Fatalf("%v from %v lands on own piece at %v", piece, from, m.End)
				}
			}
		}
	}
}

func TestSliderRaysStopAtFirstPiece(t *testing.T) {
	var b Board
	place(t, &b, "d4", White, Rook)
	place(t, &b, "d6", Black, Pawn)
	place(t, &b, "f4", White, Knight)
	moves := PseudoLegalMoves(&b, sq(t, "d4"), White)

	if !hasDest(moves, sq(t, "d5")) || !hasDest(moves, sq(t, "d6")) {
		t.Fatalf("rook should reach d5 and capture d6: %v", moves)
	}
	if hasDest(moves, sq(t, "d7")) {
		t.Fatalf("rook passed through d6: %v", moves)
	}
	if !hasDest(moves, sq(t, "e4")) || hasDest(moves, sq(t, "f4")) || hasDest(moves, sq(t, "g4")) {
		t.Fatalf("rook ray past own knight: %v", moves)
	}
	if len(moves) != 2+1+3+3 {
		t.Fatalf("rook move count = %d (%v)", len(moves), moves)
	}
}

func TestEmptySquareHasNoCandidates(t *testing.T) {
	b := StartingBoard()
	if m := PseudoLegalMoves(&b, Pos(4, 4), White); m != nil {
		t.Fatalf("empty square produced %v", m)
	}
	if m := PseudoLegalMoves(&b, Pos(0, 4), White); m != nil {
		t.Fatalf("off-board square produced %v", m)
	}
}

func TestKnightJumpsOverPieces(t *testing.T) {
	b := StartingBoard()
	moves := PseudoLegalMoves(&b, sq(t, "b1"), White)
	if len(moves) != 2 || !hasDest(moves, sq(t, "a3")) || !hasDest(moves, sq(t, "c3")) {
		t.Fatalf("b1 knight moves = %v", moves)
	}
}

func TestPawnPushesAndCaptures(t *testing.T) {
	var b Board
	place(t, &b, "e2", White, Pawn)
	place(t, &b, "d3", Black, Knight)
	place(t, &b, "f3", White, Knight)
	moves := PseudoLegalMoves(&b, sq(t, "e2"), White)
	want := []string{"e3", "e4", "d3"}
	if len(moves) != len(want) {
		t.Fatalf("pawn moves = %v", moves)
	}
	for _, s := range want {
		if !hasDest(moves, sq(t, s)) {
			t.Fatalf("missing %s in %v", s, moves)
		}
	}

	// Blocked directly: no single or double push.
	place(t, &b, "e3", Black, Pawn)
	moves = PseudoLegalMoves(&b, sq(t, "e2"), White)
	if hasDest(moves, sq(t, "e3")) || hasDest(moves, sq(t, "e4")) {
		t.Fatalf("blocked pawn pushed: %v", moves)
	}

	var bb Board
	place(t, &bb, "c7", Black, Pawn)
	moves = PseudoLegalMoves(&bb, sq(t, "c7"), Black)
	if len(moves) != 2 || !hasDest(moves, sq(t, "c6")) || !hasDest(moves, sq(t, "c5")) {
		t.Fatalf("black pawn moves = %v", moves)
	}
}

func TestPawnNoDoublePushAfterLeavingStartRow(t *testing.T) {
	var b Board
	place(t, &b, "e3", White, Pawn)
	moves := PseudoLegalMoves(&b, sq(t, "e3"), White)
	if len(moves) != 1 || moves[0].End != sq(t, "e4") {
		t.Fatalf("moves = %v", moves)
	}
}

func TestPawnPromotionExpandsToFourKinds(t *testing.T) {
	var b Board
	place(t, &b, "b7", White, Pawn)
	place(t, &b, "a8", Black, Rook)
	moves := PseudoLegalMoves(&b, sq(t, "b7"), White)
	if len(moves) != 8 {
		t.Fatalf("want 4 push + 4 capture promotions, got %v", moves)
	}
	seen := map[Move]bool{}
	for _, m := range moves {
		if m.Promotion == NoKind {
			t.Fatalf("last-row move without promotion: %v", m)
		}
		seen[m] = true
	}
	for _, to := range []string{"b8", "a8"} {
		for _, k := range PromotionKinds {
			if !seen[Move{Start: sq(t, "b7"), End: sq(t, to), Promotion: k}] {
				t.Fatalf("missing promotion %s=%s", to, k)
			}
		}
	}

	var bb Board
	place(t, &bb, "h2", Black, Pawn)
	if moves := PseudoLegalMoves(&bb, sq(t, "h2"), Black); len(moves) != 4 {
		t.Fatalf("black promotion moves = %v", moves)
	}
}

func TestApplyPromotionReplacesPiece(t *testing.T) {
	var b Board
	place(t, &b, "g7", White, Pawn)
	b.apply(Move{Start: sq(t, "g7"), End: sq(t, "g8"), Promotion: Knight})
	if p, _ := b.Get(sq(t, "g8")); p != (Piece{White, Knight}) {
		t.Fatalf("g8 = %v", p)
	}
	if p, _ := b.Get(sq(t, "g7")); !p.Empty() {
		t.Fatalf("g7 not cleared: %v", p)
	}
}

func TestKingPositionAndPieces(t *testing.T) {
	b := StartingBoard()
	if k, ok := b.KingPosition(White); !ok || k != sq(t, "e1") {
		t.Fatalf("white king = %v %v", k, ok)
	}
	if k, ok := b.KingPosition(Black); !ok || k != sq(t, "e8") {
		t.Fatalf("black king = %v %v", k, ok)
	}
	if n := len(b.Pieces(White)); n != 16 {
		t.Fatalf("white pieces = %d", n)
	}
	var empty Board
	if _, ok := empty.KingPosition(White); ok {
		t.Fatalf("empty board has a king")
	}
}
