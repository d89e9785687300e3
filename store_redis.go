package session

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the session in Redis so multiple gateway instances see
// the same login state. This generalizes the original dashboard's cross-tab
// storage sync to processes.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore wraps an existing redis client. key namespaces the session;
// pass something stable per dashboard deployment.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "session:" + defaultSessionKey
	}
	return &RedisStore{client: client, key: key}
}

// Get returns the stored session, or the zero SessionData when the key is
// absent.
func (s *RedisStore) Get(ctx context.Context) (SessionData, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return SessionData{}, nil
		}
		return SessionData{}, errors.Wrap(err, errors.CategoryOperation, "failed to read session from redis")
	}

	data := SessionData{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return SessionData{}, errors.Wrap(err, errors.CategoryBadInput, "failed to decode session payload")
	}
	return data, nil
}

// Set serializes the whole session into one key so the token pair is always
// replaced atomically.
func (s *RedisStore) Set(ctx context.Context, data SessionData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "failed to encode session payload")
	}

	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to write session to redis")
	}
	return nil
}

// Clear removes the session key. Clearing a missing key succeeds.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to clear session in redis")
	}
	return nil
}
