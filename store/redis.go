package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	mysticbot "github.com/tianji-io/mystic-agent-go"
)

// ──────────────────────────────────────────────
// Redis session store
// ──────────────────────────────────────────────
//
// Sessions survive process restarts and expire on their own via key TTL, so
// no sweeper is needed. Keys are namespaced as "{prefix}:session:{userID}".

// RedisSessionStore implements mysticbot.SessionStore using Redis.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	ctx    context.Context
}

// RedisStoreConfig configures the Redis session store.
type RedisStoreConfig struct {
	Prefix string        // key prefix, default "mysticbot"
	TTL    time.Duration // session expiry, default mysticbot.DefaultSessionTTL
}

// NewRedisSessionStore creates a SessionStore backed by Redis.
//
// Usage:
//
//	opts, _ := redis.ParseURL(cfg.RedisURL)
//	sessions := store.NewRedisSessionStore(redis.NewClient(opts))
func NewRedisSessionStore(client *redis.Client, config ...RedisStoreConfig) *RedisSessionStore {
	cfg := RedisStoreConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "mysticbot"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = mysticbot.DefaultSessionTTL
	}
	return &RedisSessionStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		ctx:    context.Background(),
	}
}

func (r *RedisSessionStore) key(userID string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, userID)
}

// Get returns nil, nil when no session exists for the user.
func (r *RedisSessionStore) Get(userID string) (*mysticbot.Session, error) {
	raw, err := r.client.Get(r.ctx, r.key(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var session mysticbot.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("redis decode session: %w", err)
	}
	return &session, nil
}

// Put stores the session and refreshes its TTL.
func (r *RedisSessionStore) Put(session *mysticbot.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis encode session: %w", err)
	}
	if err := r.client.Set(r.ctx, r.key(session.UserID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis put session: %w", err)
	}
	return nil
}

// Clear removes the user's session.
func (r *RedisSessionStore) Clear(userID string) error {
	if err := r.client.Del(r.ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis clear session: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (r *RedisSessionStore) Close() error {
	return r.client.Close()
}
