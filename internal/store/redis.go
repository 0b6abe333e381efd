package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis wraps redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// AcquireLock takes a named lock via SETNX. Returns the release token and true
// on success; false means another holder owns the lock. The TTL bounds how long
// a crashed holder can block the next run.
func (r *Redis) AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.Client.SetNX(ctx, name, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// ReleaseLock drops the lock only when it is still held under our token.
func (r *Redis) ReleaseLock(ctx context.Context, name, token string) error {
	val, err := r.Client.Get(ctx, name).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val != token {
		return nil
	}
	return r.Client.Del(ctx, name).Err()
}
