package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const SessionKeyPrefix = "login:session"

// SessionRepository 会话存储：token id -> user id，带滑动过期
type SessionRepository struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewSessionRepository(rdb *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{RDB: rdb, TTL: ttl}
}

func (r *SessionRepository) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", SessionKeyPrefix, sessionID)
}

func (r *SessionRepository) Create(ctx context.Context, sessionID string, userID uint64) error {
	if err := r.RDB.Set(ctx, r.key(sessionID), userID, r.TTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (uint64, error) {
	val, err := r.RDB.Get(ctx, r.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	uid, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session %s: %w", sessionID, err)
	}
	return uid, nil
}

// Extend 校验通过后刷新过期时间
func (r *SessionRepository) Extend(ctx context.Context, sessionID string) error {
	ok, err := r.RDB.Expire(ctx, r.key(sessionID), r.TTL).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// Delete 幂等删除
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.RDB.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
