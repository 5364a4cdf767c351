package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActiveSession is the cached shape of a running mining session, kept for
// cheap operator lookups. Postgres stays authoritative.
type ActiveSession struct {
	SessionID         int64     `json:"session_id"`
	UserID            int64     `json:"user_id"`
	Email             string    `json:"email"`
	DeviceFingerprint string    `json:"device_fingerprint"`
	StartedAt         time.Time `json:"started_at"`
}

// Store manages the active session cache.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns redis-backed store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(sessionID int64) string {
	return fmt.Sprintf("mining:active:%d", sessionID)
}

// Save caches an active session.
func (s *Store) Save(ctx context.Context, session ActiveSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.SessionID), data, s.ttl).Err()
}

// Touch refreshes the cache TTL on heartbeat.
func (s *Store) Touch(ctx context.Context, sessionID int64) error {
	return s.client.Expire(ctx, s.key(sessionID), s.ttl).Err()
}

// Get returns a cached session.
func (s *Store) Get(ctx context.Context, sessionID int64) (*ActiveSession, error) {
	result, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	var session ActiveSession
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes a cached session once it ends.
func (s *Store) Delete(ctx context.Context, sessionID int64) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}
