package chessdto

// GameState is the full snapshot sent in LOAD_GAME messages.
//
// Board holds eight rows from rank 8 down to rank 1, each with eight cells
// from the a-file to the h-file. A cell is a FEN piece letter (uppercase for
// White) or empty.
type GameState struct {
	ID         string       `json:"id"`
	FEN        string       `json:"fen"`
	Board      [8][8]string `json:"board"`
	Turn       string       `json:"turn"`
	Ply        int          `json:"ply"`
	Status     string       `json:"status"`
	WhiteID    string       `json:"whiteID"`
	BlackID    string       `json:"blackID"`
	Winner     string       `json:"winner,omitempty"`
	Outcome    string       `json:"outcome,omitempty"`
	MovesSAN   []string     `json:"movesSAN"`
	MovesUCI   []string     `json:"movesUCI"`
	InCheck    bool         `json:"inCheck"`
	BoardImage []byte       `json:"boardImage,omitempty"`
}
