package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an idle conversation survives in Redis.
const DefaultTTL = 24 * time.Hour

// RedisStore is a Store backed by a Redis key-value store with TTL-based
// eviction. Every write refreshes the TTL, so the key expires only after the
// conversation has been idle for the full window.
//
// Read-modify-write is not atomic: concurrent updates for the same id can
// race, the same way overlapping webhook calls for one user already race at
// the handler level.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a Store on client. A non-positive ttl falls back to
// DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func sessionKey(id string) string {
	return "jobsync:session:" + id
}

// Get returns the session for id, or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

// GetOrCreate returns the session for id, creating one in StateNew if absent.
func (s *RedisStore) GetOrCreate(ctx context.Context, id string) (Session, error) {
	sess, err := s.Get(ctx, id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Session{}, err
	}
	sess = newSession(id, s.now())
	if err := s.put(ctx, id, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Update applies patch to the session for id, creating it first if absent.
func (s *RedisStore) Update(ctx context.Context, id string, patch Patch) (Session, error) {
	sess, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		sess = newSession(id, s.now())
	} else if err != nil {
		return Session{}, err
	}
	applyPatch(&sess, patch, s.now())
	if err := s.put(ctx, id, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *RedisStore) put(ctx context.Context, id string, sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}
