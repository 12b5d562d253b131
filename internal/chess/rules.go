package chess

// generator produces pseudo-legal moves for the piece of color c standing on
// from. Own-king safety is not considered.
type generator func(b *Board, from Position, c Color) []Move

type direction struct{ dr, dc int }

var (
	orthogonals = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonals   = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	allEight    = append(append([]direction{}, orthogonals...), diagonals...)

	knightJumps = []direction{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}
)

// generators is indexed by Kind.
var generators = [...]generator{
	NoKind: func(*Board, Position, Color) []Move { return nil },
	Pawn:   pawnMoves,
	Knight: func(b *Board, from Position, c Color) []Move { return stepMoves(b, from, c, knightJumps) },
	Bishop: func(b *Board, from Position, c Color) []Move { return slideMoves(b, from, c, diagonals) },
	Rook:   func(b *Board, from Position, c Color) []Move { return slideMoves(b, from, c, orthogonals) },
	Queen:  func(b *Board, from Position, c Color) []Move { return slideMoves(b, from, c, allEight) },
	King:   func(b *Board, from Position, c Color) []Move { return stepMoves(b, from, c, allEight) },
}

// PseudoLegalMoves returns the candidate moves of the piece on from, moving
// as color c. An empty or out-of-bounds square yields nil.
func PseudoLegalMoves(b *Board, from Position, c Color) []Move {
	if !from.InBounds() {
		return nil
	}
	piece := b.at(from)
	if piece.Empty() || int(piece.Kind) >= len(generators) {
		return nil
	}
	return generators[piece.Kind](b, from, c)
}

func slideMoves(b *Board, from Position, c Color, dirs []direction) []Move {
	var out []Move
	for _, d := range dirs {
		for step := 1; step <= 7; step++ {
			to := from.Offset(d.dr*step, d.dc*step)
			if !to.InBounds() {
				break
			}
			target := b.at(to)
			if target.Empty() {
				out = append(out, Move{Start: from, End: to})
				continue
			}
			if target.Color != c {
				out = append(out, Move{Start: from, End: to})
			}
			break
		}
	}
	return out
}

func stepMoves(b *Board, from Position, c Color, jumps []direction) []Move {
	var out []Move
	for _, d := range jumps {
		to := from.Offset(d.dr, d.dc)
		if !to.InBounds() {
			continue
		}
		if target := b.at(to); !target.Empty() && target.Color == c {
			continue
		}
		out = append(out, Move{Start: from, End: to})
	}
	return out
}

func pawnMoves(b *Board, from Position, c Color) []Move {
	forward, startRow, lastRow := 1, 2, 8
	if c == Black {
		forward, startRow, lastRow = -1, 7, 1
	}

	var out []Move
	add := func(to Position) {
		if to.Row == lastRow {
			for _, k := range PromotionKinds {
				out = append(out, Move{Start: from, End: to, Promotion: k})
			}
			return
		}
		out = append(out, Move{Start: from, End: to})
	}

	one := from.Offset(forward, 0)
	if one.InBounds() && b.at(one).Empty() {
		add(one)
		two := from.Offset(2*forward, 0)
		if from.Row == startRow && two.InBounds() && b.at(two).Empty() {
			add(two)
		}
	}
	for _, dc := range [2]int{-1, 1} {
		to := from.Offset(forward, dc)
		if !to.InBounds() {
			continue
		}
		if target := b.at(to); !target.Empty() && target.Color != c {
			add(to)
		}
	}
	return out
}
