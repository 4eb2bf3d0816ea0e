package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/storefront/internal/domain/cart"
)

// keyPrefix namespaces session snapshots in Redis.
const keyPrefix = "storefront:session:"

// RedisStore persists per-session cart/wishlist snapshots in Redis so a
// session survives reloads. Snapshots expire with the session TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (rs *RedisStore) Save(ctx context.Context, sessionID string, state cart.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	if err := rs.client.Set(ctx, keyPrefix+sessionID, payload, rs.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}
	return nil
}

func (rs *RedisStore) Load(ctx context.Context, sessionID string) (cart.State, bool, error) {
	payload, err := rs.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return cart.State{}, false, nil
	}
	if err != nil {
		return cart.State{}, false, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var state cart.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return cart.State{}, false, fmt.Errorf("corrupt session snapshot %s: %w", sessionID, err)
	}
	return state, true, nil
}
