package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds the caller's token.
// A holder whose TTL lapsed cannot release a lock taken over by another request.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client redis.Cmdable
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireTransitLock attempts to acquire the lock guarding a transit's status.
// On success it returns the owner token that must be passed to ReleaseTransitLock.
// acquired is false if another request holds the lock.
func (s *LockStore) AcquireTransitLock(ctx context.Context, transitID string, ttl time.Duration) (token string, acquired bool, err error) {
	token = uuid.New().String()

	acquired, err = s.client.SetNX(ctx, transitLockKey(transitID), token, ttl).Result()
	if err != nil || !acquired {
		return "", false, err
	}

	return token, true, nil
}

// ReleaseTransitLock releases the lock for the given transit if it is still held with token.
func (s *LockStore) ReleaseTransitLock(ctx context.Context, transitID, token string) error {
	if token == "" {
		return nil
	}
	return releaseScript.Run(ctx, s.client, []string{transitLockKey(transitID)}, token).Err()
}

func transitLockKey(transitID string) string {
	return fmt.Sprintf("lock:transit:%s", transitID)
}
