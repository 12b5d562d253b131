// Package notation renders moves in Standard Algebraic Notation using
// corentings/chess as the reference encoder.
package notation

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// SAN encodes uci, played from the position described by fen, as SAN text
// such as "Nf3", "exd5" or "e8=Q+".
func SAN(fen, uci string) (string, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return "", fmt.Errorf("notation: fen: %w", err)
	}
	pos := nchess.NewGame(opt).Position()
	mv, err := nchess.UCINotation{}.Decode(pos, strings.ToLower(strings.TrimSpace(uci)))
	if err != nil {
		return "", fmt.Errorf("notation: decode %q: %w", uci, err)
	}
	return nchess.AlgebraicNotation{}.Encode(pos, mv), nil
}

// SANOrUCI is SAN with the UCI text as a fallback, for callers that only
// display the result.
func SANOrUCI(fen, uci string) string {
	if san, err := SAN(fen, uci); err == nil && san != "" {
		return san
	}
	return uci
}
