package session

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Fixed storage keys for the session persistence record and its sibling
// remember flag. The flag is stored but has no enforced effect on expiry.
const (
	sessionKey  = "labportal:session:v1"
	rememberKey = "labportal:session:remember"
)

// RedisStore persists the session slot so it survives process restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, sess Session, remember bool) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey, payload, 0)
	if remember {
		pipe.Set(ctx, rememberKey, "true", 0)
	} else {
		pipe.Del(ctx, rememberKey)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Load(ctx context.Context) (Session, bool, error) {
	raw, err := s.client.Get(ctx, sessionKey).Result()
	if err == redis.Nil {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

func (s *RedisStore) Remember(ctx context.Context) (bool, error) {
	raw, err := s.client.Get(ctx, rememberKey).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return raw == "true", nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, sessionKey, rememberKey).Err()
}
