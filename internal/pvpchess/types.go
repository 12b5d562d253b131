package pvpchess

import (
	"time"

	"github.com/park285/Cheese-PvP-chess/internal/chess"
)

// Color identifies chess side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func colorFrom(c chess.Color) Color {
	if c == chess.Black {
		return Black
	}
	return White
}

func (c Color) chess() chess.Color {
	if c == Black {
		return chess.Black
	}
	return chess.White
}

// Side maps c to the rules engine colour.
func (c Color) Side() chess.Color { return c.chess() }

// Status represents a PvP game lifecycle state.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCheckmate Status = "CHECKMATE"
	StatusStalemate Status = "STALEMATE"
	StatusResigned  Status = "RESIGNED"
)

// Terminal reports whether no further moves are accepted.
func (s Status) Terminal() bool { return s != StatusActive && s != "" }

// Outcome values stored on finished records.
const (
	OutcomeWhite = "white"
	OutcomeBlack = "black"
	OutcomeDraw  = "draw"
)

// Record is the persisted state of a PvP match. The board is kept as FEN;
// castling and en passant fields are always "-".
type Record struct {
	ID        string    `json:"id"`
	FEN       string    `json:"fen"`
	MovesUCI  []string  `json:"moves_uci"`
	MovesSAN  []string  `json:"moves_san"`
	Turn      Color     `json:"turn"`
	Ply       int       `json:"ply"`
	Status    Status    `json:"status"`
	WhiteID   string    `json:"white_id"`
	BlackID   string    `json:"black_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Winner    string    `json:"winner,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	// Resigned is the colour that resigned, set only with StatusResigned.
	Resigned Color `json:"resigned,omitempty"`
	// Version counts committed writes; stores bump it on every Update.
	Version int64 `json:"version"`
}

// NewRecord returns an ACTIVE record at the starting position.
func NewRecord(id, whiteID, blackID string, now time.Time) *Record {
	return &Record{
		ID:        id,
		FEN:       chess.StartFEN,
		MovesUCI:  []string{},
		MovesSAN:  []string{},
		Turn:      White,
		Status:    StatusActive,
		WhiteID:   whiteID,
		BlackID:   blackID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.MovesUCI = append([]string(nil), r.MovesUCI...)
	c.MovesSAN = append([]string(nil), r.MovesSAN...)
	return &c
}

// ColorOf returns the seat held by participant, or false for observers.
func (r *Record) ColorOf(participant string) (Color, bool) {
	switch {
	case participant == "":
		return "", false
	case participant == r.WhiteID:
		return White, true
	case participant == r.BlackID:
		return Black, true
	}
	return "", false
}

// PlayerID returns the participant seated on c.
func (r *Record) PlayerID(c Color) string {
	if c == Black {
		return r.BlackID
	}
	return r.WhiteID
}
