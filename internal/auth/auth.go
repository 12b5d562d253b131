// Package auth resolves client auth tokens to participant identities.
package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUnknownToken = errf("unknown auth token")
	ErrInvalidArgs  = errf("invalid arguments")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }

// Resolver maps a token to an identity. Unresolvable tokens yield
// ErrUnknownToken; any other error means the backend could not answer.
type Resolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, token string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// Chain tries resolvers in order. The first identity wins. When none
// resolves, a backend failure is preferred over ErrUnknownToken so callers
// can tell a transient outage from a bad token.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrUnknownToken
	}
	var backendErr error
	for _, r := range c {
		if r == nil {
			continue
		}
		id, err := r.Resolve(ctx, token)
		if err == nil && id != "" {
			return id, nil
		}
		if err != nil && !errors.Is(err, ErrUnknownToken) && backendErr == nil {
			backendErr = err
		}
	}
	if backendErr != nil {
		return "", backendErr
	}
	return "", ErrUnknownToken
}

// Static resolves from a fixed token table.
type Static map[string]string

func (s Static) Resolve(_ context.Context, token string) (string, error) {
	if id, ok := s[token]; ok && id != "" {
		return id, nil
	}
	return "", ErrUnknownToken
}
