package chessdto

import "strings"

// CommandType names an inbound user command.
type CommandType string

const (
	CommandConnect  CommandType = "CONNECT"
	CommandMakeMove CommandType = "MAKE_MOVE"
	CommandLeave    CommandType = "LEAVE"
	CommandResign   CommandType = "RESIGN"
)

// PositionDTO is a square on the wire: row is the rank, col the file, both 1..8.
type PositionDTO struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// MoveDTO is a move on the wire. Promotion is one of "knight", "bishop",
// "rook", "queen" or empty.
type MoveDTO struct {
	Start     PositionDTO `json:"start"`
	End       PositionDTO `json:"end"`
	Promotion string      `json:"promotion,omitempty"`
}

// Command is the inbound envelope sent by clients.
type Command struct {
	Type      CommandType `json:"type"`
	AuthToken string      `json:"authToken"`
	GameID    string      `json:"gameID"`
	Move      *MoveDTO    `json:"move,omitempty"`
}

// Validate checks the envelope shape only; it does not look at game state.
func (c *Command) Validate() error {
	if c == nil {
		return DomainError{Code: CodeValidation, Message: "empty command"}
	}
	switch c.Type {
	case CommandConnect, CommandLeave, CommandResign:
	case CommandMakeMove:
		if c.Move == nil {
			return DomainError{Code: CodeValidation, Message: "move is required"}
		}
	default:
		return DomainError{Code: CodeValidation, Message: "unknown command type " + string(c.Type)}
	}
	if strings.TrimSpace(c.AuthToken) == "" {
		return DomainError{Code: CodeValidation, Message: "authToken is required"}
	}
	if strings.TrimSpace(c.GameID) == "" {
		return DomainError{Code: CodeValidation, Message: "gameID is required"}
	}
	return nil
}
