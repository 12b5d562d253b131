package chessdto

// Error codes carried on the wire in ERROR messages.
const (
	CodeValidation   = "VALIDATION"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeIllegalMove  = "ILLEGAL_MOVE"
	CodeTransport    = "TRANSPORT"
	CodeInternal     = "INTERNAL"
)

type DomainError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess service error"
}

// Is matches any DomainError carrying the same code, so sentinel values can
// be compared against errors that add a message.
func (e DomainError) Is(target error) bool {
	switch t := target.(type) {
	case DomainError:
		return t.Code == e.Code
	case *DomainError:
		return t != nil && t.Code == e.Code
	}
	return false
}

// WithMessage returns a copy of e with msg as its message.
func (e DomainError) WithMessage(msg string) DomainError {
	e.Message = msg
	return e
}
