package denylist

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "finwise:denylist:"

// cmdable is the subset of the redis client used here.
type cmdable interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis keeps revoked IDs as keys that expire with the token, so the
// denylist is shared between server instances.
type Redis struct {
	client cmdable
	now    func() time.Time
}

// NewRedis connects to addr and checks the connection.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, now: time.Now}, nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	if c, ok := r.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Revoke implements Denylist.
func (r *Redis) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked implements Denylist.
func (r *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return n > 0, nil
}
