// Package chess implements the rules of the game: board, per-piece move
// generation, self-check filtering and terminal-state detection.
//
// Rows are ranks counted from White's side (1..8) and columns are files
// counted from the a-file (1..8). Castling and en passant are not supported.
package chess

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game already finished")
	ErrNoColor     = errors.New("invalid color")
)

// Color identifies a side.
type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

// Opposite returns the other side. NoColor maps to itself.
func (c Color) Opposite() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// ParseColor accepts "white"/"w" and "black"/"b".
func ParseColor(s string) (Color, error) {
	switch s {
	case "white", "w", "WHITE":
		return White, nil
	case "black", "b", "BLACK":
		return Black, nil
	}
	return NoColor, fmt.Errorf("%w: %q", ErrNoColor, s)
}

// Kind is the piece type. NoKind marks an empty square or "no promotion".
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = [...]string{"", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind accepts the lowercase names returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if i > 0 && n == s {
			return Kind(i), nil
		}
	}
	return NoKind, fmt.Errorf("unknown piece kind %q", s)
}

// PromotionKinds lists the kinds a pawn may promote to, in emission order.
var PromotionKinds = [4]Kind{Knight, Bishop, Rook, Queen}

// Piece is an immutable (color, kind) pair. The zero value is an empty square.
type Piece struct {
	Color Color
	Kind  Kind
}

// NoPiece is the empty square.
var NoPiece = Piece{}

func (p Piece) Empty() bool { return p.Kind == NoKind }

func (p Piece) String() string {
	if p.Empty() {
		return "empty"
	}
	return p.Color.String() + " " + p.Kind.String()
}

// Position is a square; Row is the rank and Col the file, both 1..8.
type Position struct {
	Row int
	Col int
}

// Pos is shorthand for Position{Row: row, Col: col}.
func Pos(row, col int) Position { return Position{Row: row, Col: col} }

func (p Position) InBounds() bool {
	return p.Row >= 1 && p.Row <= 8 && p.Col >= 1 && p.Col <= 8
}

// Offset returns p shifted by (dr, dc); the result may be out of bounds.
func (p Position) Offset(dr, dc int) Position {
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// index maps an in-bounds position onto the flat board array.
func (p Position) index() int { return (p.Row-1)*8 + (p.Col - 1) }

func positionAt(i int) Position { return Position{Row: i/8 + 1, Col: i%8 + 1} }

// String renders algebraic coordinates ("e4"); out-of-bounds positions
// render as "(row,col)".
func (p Position) String() string {
	if !p.InBounds() {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return string([]byte{byte('a' + p.Col - 1), byte('0' + p.Row)})
}

// ParseSquare parses algebraic coordinates such as "e4".
func ParseSquare(s string) (Position, error) {
	if len(s) != 2 {
		return Position{}, fmt.Errorf("%w: %q", ErrOutOfBounds, s)
	}
	p := Position{Row: int(s[1]-'0'), Col: int(s[0]-'a') + 1}
	if !p.InBounds() {
		return Position{}, fmt.Errorf("%w: %q", ErrOutOfBounds, s)
	}
	return p, nil
}

// Move is a start/end pair with an optional promotion kind.
type Move struct {
	Start     Position
	End       Position
	Promotion Kind
}

func (m Move) String() string { return m.UCI() }
