package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "vardast_ops_authed:"

// SessionRepository stores the per-session "authenticated" flag.
type SessionRepository interface {
	MarkAuthenticated(ctx context.Context, sessionID string, ttl time.Duration) error
	IsAuthenticated(ctx context.Context, sessionID string) (bool, error)
	Clear(ctx context.Context, sessionID string) error
}

type redisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository returns a Redis-backed session flag store.
func NewRedisSessionRepository(client *redis.Client) SessionRepository {
	return &redisSessionRepository{client: client}
}

func (r *redisSessionRepository) MarkAuthenticated(ctx context.Context, sessionID string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKeyPrefix+sessionID, "1", ttl).Err()
}

func (r *redisSessionRepository) IsAuthenticated(ctx context.Context, sessionID string) (bool, error) {
	val, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "1", nil
}

func (r *redisSessionRepository) Clear(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

// NewMemorySessionRepository keeps session flags in process. Used with the
// memory gateway driver and in tests.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{sessions: make(map[string]time.Time), now: time.Now}
}

func (r *memorySessionRepository) MarkAuthenticated(_ context.Context, sessionID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = r.now().Add(ttl)
	return nil
}

func (r *memorySessionRepository) IsAuthenticated(_ context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	expires, ok := r.sessions[sessionID]
	if !ok {
		return false, nil
	}
	if !r.now().Before(expires) {
		delete(r.sessions, sessionID)
		return false, nil
	}
	return true, nil
}

func (r *memorySessionRepository) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}
