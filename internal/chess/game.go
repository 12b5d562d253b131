package chess

import "fmt"

// StatusKind enumerates the game lifecycle states.
type StatusKind uint8

const (
	InProgress StatusKind = iota
	Checkmate
	Stalemate
	Resigned
)

func (k StatusKind) String() string {
	switch k {
	case InProgress:
		return "in_progress"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case Resigned:
		return "resigned"
	default:
		return "unknown"
	}
}

// Status is the lifecycle state. Color is the checkmated or resigning side
// and NoColor otherwise.
type Status struct {
	Kind  StatusKind
	Color Color
}

func (s Status) Terminal() bool { return s.Kind != InProgress }

// Winner returns the winning side, NoColor for stalemate or ongoing games.
func (s Status) Winner() Color {
	switch s.Kind {
	case Checkmate, Resigned:
		return s.Color.Opposite()
	default:
		return NoColor
	}
}

func (s Status) String() string {
	if s.Color == NoColor {
		return s.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", s.Kind, s.Color)
}

// Game is the rules state machine. It is not safe for concurrent use.
type Game struct {
	board  Board
	turn   Color
	ply    int
	status Status
}

// NewGame returns a game at the standard starting position, White to move.
func NewGame() *Game {
	return &Game{board: StartingBoard(), turn: White}
}

// NewGameFromBoard builds a game from an arbitrary position. The terminal
// status of the side to move is evaluated immediately.
func NewGameFromBoard(b Board, toMove Color, ply int) (*Game, error) {
	if toMove != White && toMove != Black {
		return nil, fmt.Errorf("%w: %d", ErrNoColor, toMove)
	}
	g := &Game{board: b, turn: toMove, ply: ply}
	g.evaluate()
	return g, nil
}

// Board returns a copy of the current board.
func (g *Game) Board() Board { return g.board }

// Turn returns the side to move.
func (g *Game) Turn() Color { return g.turn }

// Ply counts half-moves applied so far. It has no effect on the rules.
func (g *Game) Ply() int { return g.ply }

func (g *Game) Status() Status { return g.status }

// AttackedSquares returns every square reached by a raw candidate move of a
// piece of color c.
func (g *Game) AttackedSquares(c Color) map[Position]bool {
	return attackedSquares(&g.board, c)
}

func attackedSquares(b *Board, c Color) map[Position]bool {
	out := make(map[Position]bool, 32)
	for _, from := range b.Pieces(c) {
		for _, m := range PseudoLegalMoves(b, from, c) {
			out[m.End] = true
		}
	}
	return out
}

// IsInCheck reports whether c's king stands on a square attacked by the
// opponent. A board without a king of c is never in check.
func (g *Game) IsInCheck(c Color) bool {
	return inCheck(&g.board, c)
}

func inCheck(b *Board, c Color) bool {
	king, ok := b.KingPosition(c)
	if !ok {
		return false
	}
	return attackedSquares(b, c.Opposite())[king]
}

// ValidMoves returns the legal moves of the piece on pos. It is empty when
// the square is empty, the piece is not the mover's, or the game is over.
func (g *Game) ValidMoves(pos Position) []Move {
	if g.status.Terminal() || !pos.InBounds() {
		return nil
	}
	piece := g.board.at(pos)
	if piece.Empty() || piece.Color != g.turn {
		return nil
	}
	return legalFrom(&g.board, pos, piece.Color)
}

func legalFrom(b *Board, pos Position, c Color) []Move {
	candidates := PseudoLegalMoves(b, pos, c)
	out := candidates[:0]
	for _, m := range candidates {
		sim := *b
		sim.apply(m)
		if !inCheck(&sim, c) {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// LegalMoves returns every legal move available to c on the current board,
// regardless of whose turn it is.
func (g *Game) LegalMoves(c Color) []Move {
	var out []Move
	for _, from := range g.board.Pieces(c) {
		out = append(out, legalFrom(&g.board, from, c)...)
	}
	return out
}

func hasLegalMove(b *Board, c Color) bool {
	for _, from := range b.Pieces(c) {
		if len(legalFrom(b, from, c)) > 0 {
			return true
		}
	}
	return false
}

// MakeMove applies m for the side to move. Any move outside ValidMoves,
// including one made out of turn or after the game ended, is rejected with
// ErrIllegalMove and leaves the game untouched.
func (g *Game) MakeMove(m Move) error {
	if g.status.Terminal() {
		return fmt.Errorf("%w: %s", ErrIllegalMove, ErrGameOver)
	}
	legal := false
	for _, v := range g.ValidMoves(m.Start) {
		if v == m {
			legal = true
			break
		}
	}
	if !legal {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m.UCI())
	}

	g.board.apply(m)
	g.turn = g.turn.Opposite()
	g.ply++
	g.evaluate()
	return nil
}

// evaluate sets the terminal status for the side to move.
func (g *Game) evaluate() {
	if hasLegalMove(&g.board, g.turn) {
		g.status = Status{Kind: InProgress}
		return
	}
	if inCheck(&g.board, g.turn) {
		g.status = Status{Kind: Checkmate, Color: g.turn}
		return
	}
	g.status = Status{Kind: Stalemate}
}

// Resign ends the game with c resigning. It does not depend on the turn.
func (g *Game) Resign(c Color) error {
	if c != White && c != Black {
		return fmt.Errorf("%w: %d", ErrNoColor, c)
	}
	if g.status.Terminal() {
		return ErrGameOver
	}
	g.status = Status{Kind: Resigned, Color: c}
	return nil
}
