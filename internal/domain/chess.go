package domain

import "time"

// ArchivedGame is a finished game as stored in the results archive.
type ArchivedGame struct {
	GameID    string
	WhiteID   string
	BlackID   string
	Result    string
	Method    string
	MovesUCI  []string
	MovesSAN  []string
	PGN       string
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
}
