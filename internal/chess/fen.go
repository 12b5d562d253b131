package chess

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidFEN = errors.New("invalid FEN")

// StartFEN is the FEN of the starting position without castling rights.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

var fenLetters = [...]byte{NoKind: ' ', Pawn: 'p', Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q', King: 'k'}

// EncodeFEN renders the board in Forsyth-Edwards notation. Castling and en
// passant fields are always "-" and the halfmove clock is always 0.
func EncodeFEN(b Board, toMove Color, ply int) string {
	var sb strings.Builder
	for row := 8; row >= 1; row-- {
		empty := 0
		for col := 1; col <= 8; col++ {
			piece := b.at(Pos(row, col))
			if piece.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			letter := fenLetters[piece.Kind]
			if piece.Color == White {
				letter -= 'a' - 'A'
			}
			sb.WriteByte(letter)
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if row > 1 {
			sb.WriteByte('/')
		}
	}
	side := "w"
	if toMove == Black {
		side = "b"
	}
	fmt.Fprintf(&sb, " %s - - 0 %d", side, ply/2+1)
	return sb.String()
}

// DecodeFEN parses the placement and side-to-move fields. Castling and en
// passant fields are ignored. The returned ply is derived from the fullmove
// number and the side to move.
func DecodeFEN(fen string) (Board, Color, int, error) {
	var b Board
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return b, NoColor, 0, fmt.Errorf("%w: %q", ErrInvalidFEN, fen)
	}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return b, NoColor, 0, fmt.Errorf("%w: want 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for i, rank := range ranks {
		row := 8 - i
		col := 1
		for _, r := range rank {
			if r >= '1' && r <= '8' {
				col += int(r - '0')
				continue
			}
			if col > 8 {
				return b, NoColor, 0, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, row)
			}
			piece, ok := pieceFromLetter(byte(r))
			if !ok {
				return b, NoColor, 0, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, r)
			}
			b[Pos(row, col).index()] = piece
			col++
		}
		if col != 9 {
			return b, NoColor, 0, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, row, col-1)
		}
	}

	var toMove Color
	switch fields[1] {
	case "w":
		toMove = White
	case "b":
		toMove = Black
	default:
		return b, NoColor, 0, fmt.Errorf("%w: side %q", ErrInvalidFEN, fields[1])
	}

	ply := 0
	if len(fields) >= 6 {
		full, err := strconv.Atoi(fields[5])
		if err != nil || full < 1 {
			return b, NoColor, 0, fmt.Errorf("%w: fullmove %q", ErrInvalidFEN, fields[5])
		}
		ply = (full - 1) * 2
	}
	if toMove == Black {
		ply++
	}
	return b, toMove, ply, nil
}

func pieceFromLetter(c byte) (Piece, bool) {
	color := Black
	if c >= 'A' && c <= 'Z' {
		color = White
		c += 'a' - 'A'
	}
	for k, letter := range fenLetters {
		if k != int(NoKind) && letter == c {
			return Piece{Color: color, Kind: Kind(k)}, true
		}
	}
	return NoPiece, false
}

// FEN renders the game's current position.
func (g *Game) FEN() string { return EncodeFEN(g.board, g.turn, g.ply) }

// GameFromFEN rebuilds a game from a FEN string.
func GameFromFEN(fen string) (*Game, error) {
	b, toMove, ply, err := DecodeFEN(fen)
	if err != nil {
		return nil, err
	}
	return NewGameFromBoard(b, toMove, ply)
}
