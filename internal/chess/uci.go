package chess

import (
	"fmt"
	"strings"
)

var promotionLetters = map[Kind]byte{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}

// UCI renders the move in long algebraic form, e.g. "e2e4" or "e7e8q".
func (m Move) UCI() string {
	s := m.Start.String() + m.End.String()
	if l, ok := promotionLetters[m.Promotion]; ok {
		s += string(l)
	}
	return s
}

// ParseUCI parses a long algebraic move such as "e2e4" or "a7a8q".
func ParseUCI(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: malformed move %q", ErrIllegalMove, s)
	}
	start, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, err
	}
	end, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, err
	}
	m := Move{Start: start, End: end}
	if len(s) == 5 {
		for k, l := range promotionLetters {
			if l == s[4] {
				m.Promotion = k
			}
		}
		if m.Promotion == NoKind {
			return Move{}, fmt.Errorf("%w: bad promotion %q", ErrIllegalMove, s[4:])
		}
	}
	return m, nil
}
