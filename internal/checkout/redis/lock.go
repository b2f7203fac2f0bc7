package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const lockPrefix = "settle_lock:"

// Lock serializes settlement per payment session: concurrent or
// duplicate confirmations for the same session id take turns, so exactly
// one performs the state transition.
type Lock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewLock(client *redis.Client) *Lock {
	// TTL caps how long a crashed settlement can hold the session.
	return &Lock{Client: client, TTL: 30 * time.Second}
}

// Acquire takes the per-session lock, owned by the given token.
func (l *Lock) Acquire(ctx context.Context, sessionID, owner string) (bool, error) {
	return l.Client.SetNX(ctx, lockPrefix+sessionID, owner, l.TTL).Result()
}

// Release frees the lock only when the caller still owns it, so an
// expired lock taken over by another settlement is left alone.
func (l *Lock) Release(ctx context.Context, sessionID, owner string) error {
	key := lockPrefix + sessionID
	val, err := l.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released or expired
	}
	if err != nil {
		return err
	}
	if val == owner {
		_, err := l.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
