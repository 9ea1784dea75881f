package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	draftKeyPrefix   = "portfolio:draft:"  // Draft session: portfolio:draft:{uid}:{sid}
	userDraftsPrefix = "portfolio:drafts:" // Set of session IDs for a user: portfolio:drafts:{uid}
	defaultDraftTTL  = 24 * time.Hour
)

// SessionStore persists edit sessions.
type SessionStore interface {
	Get(ctx context.Context, uid, sid string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, uid, sid string) error
	DeleteAll(ctx context.Context, uid string) error
}

// RedisSessionStore keeps drafts in Redis with a sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (r *RedisSessionStore) Get(ctx context.Context, uid, sid string) (*Session, error) {
	data, err := r.client.Get(ctx, r.draftKey(uid, sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionStore) Put(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	setKey := r.userDraftsKey(s.UID)

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.draftKey(s.UID, s.ID), data, r.ttl)
	pipe.SAdd(ctx, setKey, s.ID)
	pipe.Expire(ctx, setKey, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store draft: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, uid, sid string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.draftKey(uid, sid))
	pipe.SRem(ctx, r.userDraftsKey(uid), sid)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// DeleteAll drops every draft of uid.
func (r *RedisSessionStore) DeleteAll(ctx context.Context, uid string) error {
	setKey := r.userDraftsKey(uid)

	sids, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list drafts: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, sid := range sids {
		pipe.Del(ctx, r.draftKey(uid, sid))
	}
	pipe.Del(ctx, setKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete drafts: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) draftKey(uid, sid string) string {
	return draftKeyPrefix + uid + ":" + sid
}

func (r *RedisSessionStore) userDraftsKey(uid string) string {
	return userDraftsPrefix + uid
}
