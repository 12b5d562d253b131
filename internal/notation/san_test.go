package notation

import "testing"

func TestSAN(t *testing.T) {
	cases := []struct {
		fen, uci, want string
	}{
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1", "e2e4", "e4"},
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1", "g1f3", "Nf3"},
		{"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w - - 0 2", "e4d5", "exd5"},
		{"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - - 0 1", "b8c6", "Nc6"},
	}
	for _, c := range cases {
		got, err := SAN(c.fen, c.uci)
		if err != nil {
			t.Fatalf("SAN(%s): %v", c.uci, err)
		}
		if got != c.want {
			t.Fatalf("SAN(%s) = %q, want %q", c.uci, got, c.want)
		}
	}
}

func TestSANOrUCIFallsBack(t *testing.T) {
	if got := SANOrUCI("not a fen", "e2e4"); got != "e2e4" {
		t.Fatalf("fallback = %q", got)
	}
	if _, err := SAN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1", "zz"); err == nil {
		t.Fatalf("bad uci accepted")
	}
}
