package chessdto

import "errors"

// MessageType names an outbound server message.
type MessageType string

const (
	MessageLoadGame     MessageType = "LOAD_GAME"
	MessageNotification MessageType = "NOTIFICATION"
	MessageError        MessageType = "ERROR"
)

// ServerMessage is the outbound envelope. Exactly one payload field is set,
// matching Type.
type ServerMessage struct {
	Type         MessageType `json:"type"`
	Game         *GameState  `json:"game,omitempty"`
	Message      string      `json:"message,omitempty"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
	ErrorCode    string      `json:"errorCode,omitempty"`
}

func LoadGame(g *GameState) *ServerMessage {
	return &ServerMessage{Type: MessageLoadGame, Game: g}
}

func Notification(text string) *ServerMessage {
	return &ServerMessage{Type: MessageNotification, Message: text}
}

// ErrorFrom converts err into an ERROR message. Errors that are not a
// DomainError are reported as INTERNAL without their text.
func ErrorFrom(err error) *ServerMessage {
	var de DomainError
	if errors.As(err, &de) {
		return &ServerMessage{Type: MessageError, ErrorMessage: de.Error(), ErrorCode: de.Code}
	}
	return &ServerMessage{Type: MessageError, ErrorMessage: "internal error", ErrorCode: CodeInternal}
}
