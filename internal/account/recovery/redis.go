package recovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "recovery:"

// RedisStore shares recovery sessions between replicas. Redis expires keys
// on its own; the session's ExpiresAt is still checked against the clock.
type RedisStore struct {
	rdb  redis.Cmdable
	opts Options
}

func NewRedisStore(rdb redis.Cmdable, opts Options) *RedisStore {
	return &RedisStore{rdb: rdb, opts: opts.withDefaults()}
}

type redisSession struct {
	UserID    string    `json:"uid"`
	Username  string    `json:"usr"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

func (r *RedisStore) Issue(ctx context.Context, userID, username string) (domain.RecoverySession, error) {
	s, err := r.opts.newSession(userID, username)
	if err != nil {
		return domain.RecoverySession{}, err
	}

	data, err := json.Marshal(redisSession{
		UserID:    s.UserID,
		Username:  s.Username,
		IssuedAt:  s.IssuedAt,
		ExpiresAt: s.ExpiresAt,
	})
	if err != nil {
		return domain.RecoverySession{}, err
	}

	ok, err := r.rdb.SetNX(ctx, redisKeyPrefix+key(s.Token), data, r.opts.TTL).Result()
	if err != nil {
		return domain.RecoverySession{}, fmt.Errorf("recovery: redis set: %w", err)
	}
	if !ok {
		return domain.RecoverySession{}, errors.New("recovery: token collision")
	}
	return s, nil
}

func (r *RedisStore) Validate(ctx context.Context, token string) (domain.RecoverySession, error) {
	return r.decode(token, r.rdb.Get(ctx, redisKeyPrefix+key(token)))
}

// Consume relies on GETDEL so the read and the delete are one command.
func (r *RedisStore) Consume(ctx context.Context, token string) (domain.RecoverySession, error) {
	return r.decode(token, r.rdb.GetDel(ctx, redisKeyPrefix+key(token)))
}

// PurgeExpired is a no-op: Redis evicts keys when their TTL lapses.
func (r *RedisStore) PurgeExpired(ctx context.Context) (int, error) {
	return 0, nil
}

func (r *RedisStore) decode(token string, cmd *redis.StringCmd) (domain.RecoverySession, error) {
	data, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.RecoverySession{}, ErrInvalidToken
	}
	if err != nil {
		return domain.RecoverySession{}, fmt.Errorf("recovery: redis get: %w", err)
	}

	var rs redisSession
	if err := json.Unmarshal(data, &rs); err != nil {
		return domain.RecoverySession{}, fmt.Errorf("recovery: decode session: %w", err)
	}

	s := domain.RecoverySession{
		Token:     token,
		UserID:    rs.UserID,
		Username:  rs.Username,
		IssuedAt:  rs.IssuedAt,
		ExpiresAt: rs.ExpiresAt,
	}
	if s.Expired(r.opts.Now()) {
		return domain.RecoverySession{}, ErrInvalidToken
	}
	return s, nil
}

// Ping reports whether Redis is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
