package chess

import "fmt"

// Board is a flat 64-slot array indexed by (row-1)*8 + (col-1).
// Boards are values: assignment copies, == compares.
type Board [64]Piece

// Get returns the piece on p (NoPiece when empty).
func (b *Board) Get(p Position) (Piece, error) {
	if !p.InBounds() {
		return NoPiece, fmt.Errorf("%w: %s", ErrOutOfBounds, p)
	}
	return b[p.index()], nil
}

// Set places piece on p; NoPiece clears the square.
func (b *Board) Set(p Position, piece Piece) error {
	if !p.InBounds() {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, p)
	}
	b[p.index()] = piece
	return nil
}

// at is Get without the bounds error; callers guarantee p.InBounds().
func (b *Board) at(p Position) Piece { return b[p.index()] }

// apply performs m unconditionally: the destination is overwritten and the
// promotion kind, if any, replaces the moving piece.
func (b *Board) apply(m Move) {
	piece := b.at(m.Start)
	if m.Promotion != NoKind {
		piece = Piece{Color: piece.Color, Kind: m.Promotion}
	}
	b[m.End.index()] = piece
	b[m.Start.index()] = NoPiece
}

// KingPosition locates the king of c.
func (b *Board) KingPosition(c Color) (Position, bool) {
	for i, piece := range b {
		if piece.Kind == King && piece.Color == c {
			return positionAt(i), true
		}
	}
	return Position{}, false
}

// Pieces returns the positions of every piece of c in board order.
func (b *Board) Pieces(c Color) []Position {
	out := make([]Position, 0, 16)
	for i, piece := range b {
		if !piece.Empty() && piece.Color == c {
			out = append(out, positionAt(i))
		}
	}
	return out
}

var backRank = [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StartingBoard returns the standard initial set-up.
func StartingBoard() Board {
	var b Board
	for col := 1; col <= 8; col++ {
		b[Pos(1, col).index()] = Piece{Color: White, Kind: backRank[col-1]}
		b[Pos(2, col).index()] = Piece{Color: White, Kind: Pawn}
		b[Pos(7, col).index()] = Piece{Color: Black, Kind: Pawn}
		b[Pos(8, col).index()] = Piece{Color: Black, Kind: backRank[col-1]}
	}
	return b
}
