package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func sessionKey(sessionID string) string { return "session:" + sessionID }

func stateKey(state string) string { return "oauth_state:" + state }

// SessionStore keeps live sessions in redis. A session exists for as long as
// its refresh token may be used.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, sessionID, userID uuid.UUID) error {
	if err := s.rdb.Set(ctx, sessionKey(sessionID.String()), userID.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Exists reports whether the session is live.
func (s *SessionStore) Exists(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionKey(sessionID.String())).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n > 0, nil
}

// Touch extends the session TTL. It returns ErrSessionNotFound when the
// session already expired.
func (s *SessionStore) Touch(ctx context.Context, sessionID uuid.UUID) error {
	ok, err := s.rdb.Expire(ctx, sessionKey(sessionID.String()), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("extend session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	n, err := s.rdb.Del(ctx, sessionKey(sessionID.String())).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return n > 0, nil
}

// SaveState remembers an OAuth state nonce and the redirect it was issued for.
func (s *SessionStore) SaveState(ctx context.Context, state, redirectURI string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, stateKey(state), redirectURI, ttl).Err(); err != nil {
		return fmt.Errorf("store oauth state: %w", err)
	}
	return nil
}

// ConsumeState deletes the nonce and returns its redirect URI. Each nonce is
// usable once.
func (s *SessionStore) ConsumeState(ctx context.Context, state string) (string, error) {
	v, err := s.rdb.GetDel(ctx, stateKey(state)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidState
	}
	if err != nil {
		return "", fmt.Errorf("consume oauth state: %w", err)
	}
	return v, nil
}
