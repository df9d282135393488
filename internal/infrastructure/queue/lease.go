package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChannelLease serializes channel ownership across worker instances. Only
// the lease holder may claim jobs on the channel.
type ChannelLease interface {
	Acquire(ctx context.Context, channel string, ttl time.Duration) (bool, error)
	Renew(ctx context.Context, channel string, ttl time.Duration) error
	Release(ctx context.Context, channel string) error
}

// RedisChannelLease implements ChannelLease using Redis SETNX.
// This is suitable for distributed deployments where multiple instances
// compete for the same channels.
type RedisChannelLease struct {
	client    *redis.Client
	keyPrefix string
	ownerID   string
}

// NewRedisChannelLease creates a lease keyed by owner, so a holder only
// renews or releases its own lease
func NewRedisChannelLease(client *redis.Client, ownerID string) *RedisChannelLease {
	return &RedisChannelLease{
		client:    client,
		keyPrefix: "queue:channel:",
		ownerID:   ownerID,
	}
}

// Acquire takes the channel lease if nobody holds it.
// Uses SETNX (SET if Not eXists) for atomic operation.
func (l *RedisChannelLease) Acquire(ctx context.Context, channel string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.keyPrefix+channel, l.ownerID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire channel lease: %w", err)
	}
	return ok, nil
}

// renewScript extends the TTL only when the caller still owns the lease
var renewScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

// Renew extends the lease TTL while the worker is still running
func (l *RedisChannelLease) Renew(ctx context.Context, channel string, ttl time.Duration) error {
	res, err := renewScript.Run(ctx, l.client,
		[]string{l.keyPrefix + channel}, l.ownerID, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to renew channel lease: %w", err)
	}
	if res == 0 {
		return fmt.Errorf("channel lease for %q lost", channel)
	}
	return nil
}

// releaseScript deletes the lease only when the caller still owns it
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Release gives the channel lease back
func (l *RedisChannelLease) Release(ctx context.Context, channel string) error {
	if err := releaseScript.Run(ctx, l.client,
		[]string{l.keyPrefix + channel}, l.ownerID).Err(); err != nil {
		return fmt.Errorf("failed to release channel lease: %w", err)
	}
	return nil
}

// Ensure RedisChannelLease implements ChannelLease
var _ ChannelLease = (*RedisChannelLease)(nil)
