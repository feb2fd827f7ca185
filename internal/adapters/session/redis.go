package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	recentsKeyPrefix = "recents:"
)

// RedisStore keeps sessions and recents in Redis with a shared TTL, so a
// restart or horizontal scale-out does not log users out.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore wraps an existing Redis client. The ttl applies to both
// the session record and its recents list.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) CreateSession(ctx context.Context, steamID string) (string, error) {
	token := uuid.NewString()
	sess := Session{SteamID: steamID, CreatedAt: time.Now()}

	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisStore) GetSession(ctx context.Context, token string) (Session, error) {
	payload, err := s.rdb.Get(ctx, sessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+token, recentsKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) Recents(ctx context.Context, token string) (Recents, error) {
	payload, err := s.rdb.Get(ctx, recentsKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return Recents{}, nil
	}
	if err != nil {
		return Recents{}, fmt.Errorf("load recents: %w", err)
	}

	var r Recents
	if err := json.Unmarshal(payload, &r); err != nil {
		return Recents{}, fmt.Errorf("decode recents: %w", err)
	}
	return r, nil
}

func (s *RedisStore) TouchAccount(ctx context.Context, token string, acc Account, manual bool) error {
	r, err := s.Recents(ctx, token)
	if err != nil {
		return err
	}
	r = touch(r, acc, manual)

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal recents: %w", err)
	}
	if err := s.rdb.Set(ctx, recentsKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store recents: %w", err)
	}
	return nil
}
