package pvpchess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/Cheese-PvP-chess/internal/obslog"
)

// DefaultTTL bounds how long an idle game survives in Redis.
const DefaultTTL = 24 * time.Hour

// RedisStore keeps each record as JSON under pvp:game:<id> with a sliding TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for game store")
	}
	opts, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreFromClient(rdb, ttl), nil
}

// NewRedisStoreFromClient wraps an existing client; ttl <= 0 uses DefaultTTL.
func NewRedisStoreFromClient(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	raw, err := s.rdb.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return &r, nil
}

// Create stores a new record and fails with ErrGameExists on id collision.
func (s *RedisStore) Create(ctx context.Context, r *Record) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, gameKey(r.ID), raw, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis create %s: %w", r.ID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameExists, r.ID)
	}
	obslog.L().Info("pvp_game_create",
		zap.String("game_id", r.ID),
		zap.String("white_id", r.WhiteID),
		zap.String("black_id", r.BlackID),
	)
	return nil
}

// Update overwrites an existing record and refreshes its TTL. The version
// check and the write run in one WATCH transaction, so writers in other
// processes sharing the key are serialised too.
func (s *RedisStore) Update(ctx context.Context, r *Record) error {
	next := r.Clone()
	next.Version++
	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	key := gameKey(r.ID)
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", ErrGameNotFound, r.ID)
		}
		if err != nil {
			return err
		}
		var stored Record
		if err := json.Unmarshal(cur, &stored); err != nil {
			return fmt.Errorf("decode %s: %w", r.ID, err)
		}
		if stored.Version != r.Version {
			return fmt.Errorf("%w: %s (stored v%d, read v%d)", ErrStaleRecord, r.ID, stored.Version, r.Version)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, s.ttl)
			return nil
		})
		return err
	}, key)
	switch {
	case err == nil:
		r.Version = next.Version
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("%w: %s", ErrStaleRecord, r.ID)
	case errors.Is(err, ErrGameNotFound), errors.Is(err, ErrStaleRecord):
		return err
	}
	return fmt.Errorf("redis update %s: %w", r.ID, err)
}

func gameKey(id string) string { return "pvp:game:" + strings.TrimSpace(id) }

// ParseRedisURL converts redis://[:password@]host:port/db into client options.
func ParseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
