package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "salonflow:reservation:"

// RedisStore shares wizard sessions between instances. Redis TTLs expire
// sessions, so no sweeping is needed.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *RedisStore) Create(ctx context.Context, state *State, ttl time.Duration) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	created, err := s.client.SetNX(ctx, sessionKey(state.ID), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create reservation session: %w", err)
	}
	if !created {
		return ErrSessionExists
	}
	return nil
}

func (s *RedisStore) Save(ctx context.Context, state *State, ttl time.Duration) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, sessionKey(state.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save reservation session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation session: %w", err)
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}
