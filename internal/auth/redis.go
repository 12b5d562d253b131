package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const ttlToken = 24 * time.Hour

// RedisTokenStore keeps opaque tokens under auth:token:<token> with a TTL.
type RedisTokenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisTokenStore wraps rdb; ttl <= 0 uses 24h.
func NewRedisTokenStore(rdb *redis.Client, ttl time.Duration) *RedisTokenStore {
	if ttl <= 0 {
		ttl = ttlToken
	}
	return &RedisTokenStore{rdb: rdb, ttl: ttl}
}

func keyToken(token string) string { return "auth:token:" + strings.TrimSpace(token) }

// Issue mints a random token bound to identity.
func (s *RedisTokenStore) Issue(ctx context.Context, identity string) (string, error) {
	if strings.TrimSpace(identity) == "" {
		return "", ErrInvalidArgs
	}
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	if err := s.rdb.Set(ctx, keyToken(token), identity, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) Resolve(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrUnknownToken
	}
	id, err := s.rdb.Get(ctx, keyToken(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrUnknownToken
	}
	if err != nil {
		return "", fmt.Errorf("resolve token: %w", err)
	}
	return id, nil
}

func (s *RedisTokenStore) Revoke(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, keyToken(token)).Err()
}
