// Package claims is the authentication-claims store: the small
// credential payload baked into tokens on the next refresh.
package claims

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	xerrors "notification-service/pkg/xerrors"
)

// Store holds per-user auth claims. SetRoleClaim replaces the whole
// claims object, matching how custom claims behave upstream.
type Store interface {
	SetRoleClaim(ctx context.Context, userID, role string) error
	GetRoleClaim(ctx context.Context, userID string) (string, error)
}

type redisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func claimsKey(userID string) string {
	return "claims:" + userID
}

type claimsObject struct {
	Role string `json:"role"`
}

// SetRoleClaim implements Store. The write is a full replace: any
// previously stored claims under this user are discarded.
func (s *redisStore) SetRoleClaim(ctx context.Context, userID, role string) error {
	b, err := json.Marshal(claimsObject{Role: role})
	if err != nil {
		return fmt.Errorf("marshal claims: %w", err)
	}
	if err := s.rdb.Set(ctx, claimsKey(userID), b, 0).Err(); err != nil {
		return fmt.Errorf("set claims for %s: %w", userID, err)
	}
	return nil
}

// GetRoleClaim implements Store.
func (s *redisStore) GetRoleClaim(ctx context.Context, userID string) (string, error) {
	raw, err := s.rdb.Get(ctx, claimsKey(userID)).Result()
	if err == redis.Nil {
		return "", xerrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get claims for %s: %w", userID, err)
	}

	var c claimsObject
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return "", fmt.Errorf("decode claims for %s: %w", userID, err)
	}
	return c.Role, nil
}
