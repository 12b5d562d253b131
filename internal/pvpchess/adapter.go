package pvpchess

import (
	"fmt"
	"time"

	"github.com/park285/Cheese-PvP-chess/internal/chess"
	"github.com/park285/Cheese-PvP-chess/pkg/chessdto"
)

// Game rebuilds the rules state machine from the record.
func (r *Record) Game() (*chess.Game, error) {
	g, err := chess.GameFromFEN(r.FEN)
	if err != nil {
		return nil, fmt.Errorf("reconstruct %s: %w", r.ID, err)
	}
	if r.Status == StatusResigned && !g.Status().Terminal() {
		if err := g.Resign(r.Resigned.chess()); err != nil {
			return nil, fmt.Errorf("reconstruct %s: %w", r.ID, err)
		}
	}
	return g, nil
}

// Sync copies the game's position and lifecycle state onto the record.
// Move lists are left to the caller.
func (r *Record) Sync(g *chess.Game, now time.Time) {
	r.FEN = g.FEN()
	r.Turn = colorFrom(g.Turn())
	r.Ply = g.Ply()
	r.UpdatedAt = now

	st := g.Status()
	r.Winner, r.Outcome, r.Resigned = "", "", ""
	switch st.Kind {
	case chess.InProgress:
		r.Status = StatusActive
	case chess.Checkmate:
		r.Status = StatusCheckmate
	case chess.Stalemate:
		r.Status = StatusStalemate
		r.Outcome = OutcomeDraw
	case chess.Resigned:
		r.Status = StatusResigned
		r.Resigned = colorFrom(st.Color)
	}
	if w := st.Winner(); w != chess.NoColor {
		r.Outcome = string(colorFrom(w))
		r.Winner = r.PlayerID(colorFrom(w))
	}
}

// Method names how a finished game ended, for archive rows and PGN headers.
func (r *Record) Method() string {
	switch r.Status {
	case StatusCheckmate:
		return "checkmate"
	case StatusStalemate:
		return "stalemate"
	case StatusResigned:
		return "resign"
	}
	return ""
}

// ToState builds the wire snapshot. g must be the game rebuilt from r.
func ToState(r *Record, g *chess.Game) *chessdto.GameState {
	s := &chessdto.GameState{
		ID:       r.ID,
		FEN:      r.FEN,
		Turn:     string(r.Turn),
		Ply:      r.Ply,
		Status:   string(r.Status),
		WhiteID:  r.WhiteID,
		BlackID:  r.BlackID,
		Winner:   r.Winner,
		Outcome:  r.Outcome,
		MovesSAN: append([]string{}, r.MovesSAN...),
		MovesUCI: append([]string{}, r.MovesUCI...),
	}
	if g == nil {
		return s
	}
	b := g.Board()
	for row := 8; row >= 1; row-- {
		for col := 1; col <= 8; col++ {
			p, _ := b.Get(chess.Pos(row, col))
			s.Board[8-row][col-1] = pieceLetter(p)
		}
	}
	s.InCheck = g.IsInCheck(g.Turn())
	return s
}

var letters = map[chess.Kind]string{
	chess.Pawn: "p", chess.Knight: "n", chess.Bishop: "b",
	chess.Rook: "r", chess.Queen: "q", chess.King: "k",
}

func pieceLetter(p chess.Piece) string {
	l := letters[p.Kind]
	if p.Color == chess.White && l != "" {
		return string(l[0] - ('a' - 'A'))
	}
	return l
}
