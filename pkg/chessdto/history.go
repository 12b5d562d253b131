package chessdto

import "time"

// GameSummary is one archived, finished game as returned by the history
// endpoint.
type GameSummary struct {
	GameID     string    `json:"gameID"`
	WhiteID    string    `json:"whiteID"`
	BlackID    string    `json:"blackID"`
	Result     string    `json:"result"`
	Method     string    `json:"method"`
	MovesSAN   []string  `json:"movesSAN"`
	PGN        string    `json:"pgn"`
	StartedAt  time.Time `json:"startedAt"`
	EndedAt    time.Time `json:"endedAt"`
	DurationMs int64     `json:"durationMs"`
}
