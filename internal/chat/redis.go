package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps sessions in Redis so chat state survives
// restarts and can be shared across instances. Values are JSON, expiry
// is delegated to Redis via SET with TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(addr, password string, db int, ttl time.Duration) (*RedisSessionStore, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisSessionStore{client: client, ttl: ttl}, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.ID), data, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

func sessionKey(id uuid.UUID) string {
	return "spacify:session:" + id.String()
}
