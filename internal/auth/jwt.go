package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTResolver accepts HS256 tokens and uses the subject claim as identity.
type JWTResolver struct {
	secret []byte
	issuer string
}

func NewJWTResolver(secret, issuer string) (*JWTResolver, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrInvalidArgs
	}
	return &JWTResolver{secret: []byte(secret), issuer: issuer}, nil
}

// Issue signs a token for identity valid for ttl.
func (j *JWTResolver) Issue(identity string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(identity) == "" {
		return "", ErrInvalidArgs
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   identity,
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

func (j *JWTResolver) Resolve(_ context.Context, token string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownToken, err)
	}
	if claims.Subject == "" {
		return "", ErrUnknownToken
	}
	return claims.Subject, nil
}
