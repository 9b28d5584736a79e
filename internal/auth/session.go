package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSessionTTL is how long an issued token stays resolvable
	DefaultSessionTTL = 24 * time.Hour
	// DefaultSessionPrefix namespaces session keys in the shared store
	DefaultSessionPrefix = "auth_"

	tokenBytes = 32
)

var (
	// ErrNoSession is returned for any token that does not resolve to a user.
	// Absent, expired, revoked and unreadable tokens are not told apart.
	ErrNoSession = errors.New("session not found")
	// ErrSessionStoreUnavailable is returned when a token cannot be persisted
	ErrSessionStoreUnavailable = errors.New("session store unavailable")
)

// SessionStore issues, resolves and revokes opaque session tokens
type SessionStore interface {
	Issue(ctx context.Context, userID uuid.UUID) (string, error)
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
	Revoke(ctx context.Context, token string) error
}

// RedisSessionStore keeps token -> user id mappings in Redis and lets key
// expiry enforce the TTL.
type RedisSessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisSessionStore creates a session store on top of an existing client
func NewRedisSessionStore(client redis.UniversalClient, prefix string, ttl time.Duration) (*RedisSessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client must not be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

func (s *RedisSessionStore) key(token string) string {
	return s.prefix + token
}

// Issue stores a fresh token for userID
func (s *RedisSessionStore) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, s.key(token), userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionStoreUnavailable, err)
	}
	return token, nil
}

// Resolve returns the user id behind token
func (s *RedisSessionStore) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrNoSession
	}

	val, err := s.client.Get(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrNoSession
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed user id", ErrNoSession)
	}
	return userID, nil
}

// Revoke deletes the token. Revoking an unknown token is not an error.
func (s *RedisSessionStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionStoreUnavailable, err)
	}
	return nil
}

// generateToken returns 256 bits of randomness, base64url encoded
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
