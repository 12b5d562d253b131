package service

import (
	"errors"

	"github.com/park285/Cheese-PvP-chess/internal/auth"
	"github.com/park285/Cheese-PvP-chess/internal/pvpchess"
	"github.com/park285/Cheese-PvP-chess/pkg/chessdto"
)

// Sentinel errors. They match any DomainError with the same code under
// errors.Is, so callers can test against them after WithMessage.
var (
	ErrValidation   = chessdto.DomainError{Code: chessdto.CodeValidation, Message: "invalid command"}
	ErrUnauthorized = chessdto.DomainError{Code: chessdto.CodeUnauthorized, Message: "unauthorized"}
	ErrNotFound     = chessdto.DomainError{Code: chessdto.CodeNotFound, Message: "game not found"}
	ErrIllegalMove  = chessdto.DomainError{Code: chessdto.CodeIllegalMove, Message: "illegal move"}
	ErrInternal     = chessdto.DomainError{Code: chessdto.CodeInternal, Message: "internal error", Retryable: true}
)

// codeOf returns the wire code of err, "OK" for nil.
func codeOf(err error) string {
	if err == nil {
		return "OK"
	}
	var de chessdto.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return chessdto.CodeInternal
}

func storeError(err error) error {
	if errors.Is(err, pvpchess.ErrGameNotFound) {
		return ErrNotFound
	}
	return ErrInternal
}

func authError(err error) error {
	if errors.Is(err, auth.ErrUnknownToken) || errors.Is(err, auth.ErrInvalidArgs) {
		return ErrUnauthorized.WithMessage("unknown auth token")
	}
	return ErrInternal.WithMessage("auth backend unavailable")
}
