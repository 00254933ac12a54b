package reservation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// lockScript takes every key or none. It returns the 1-based positions of
// the keys that are already held; an empty reply means all were set.
var lockScript = redis.NewScript(`
local busy = {}
for i, key in ipairs(KEYS) do
	if redis.call("EXISTS", key) == 1 then
		busy[#busy + 1] = i
	end
end
if #busy > 0 then
	return busy
end
for _, key in ipairs(KEYS) do
	redis.call("SET", key, ARGV[1], "PX", ARGV[2])
end
return busy
`)

// unlockScript deletes each key only while it still carries our token, so an
// expired lock re-acquired by someone else is left alone.
var unlockScript = redis.NewScript(`
local n = 0
for _, key in ipairs(KEYS) do
	if redis.call("GET", key) == ARGV[1] then
		n = n + redis.call("DEL", key)
	end
end
return n
`)

// RedisLocker shares seat locks between instances. Each key is a PX entry
// that expires after ttl in case the holder dies. The lock scripts touch
// several keys at once, so the client must not be a cluster client.
type RedisLocker struct {
	client        redis.UniversalClient
	ttl           time.Duration
	retryInterval time.Duration
	prefix        string
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{
		client:        client,
		ttl:           ttl,
		retryInterval: 50 * time.Millisecond,
		prefix:        "lock:",
	}
}

// TryAcquire sets all keys in one script call, so overlapping requests never
// split the keys between them.
func (l *RedisLocker) TryAcquire(ctx context.Context, keys []string) (ReleaseFunc, error) {
	if len(keys) == 0 {
		return func() {}, nil
	}

	token := uuid.NewString()
	busyIdx, err := lockScript.Run(ctx, l.client, l.redisKeys(keys), token, l.ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis lock: %w", err)
	}

	if len(busyIdx) > 0 {
		busy := make([]string, 0, len(busyIdx))
		for _, i := range busyIdx {
			busy = append(busy, keys[i-1])
		}
		return nil, &BusyError{Keys: busy}
	}

	var once sync.Once
	return func() { once.Do(func() { l.release(keys, token) }) }, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, keys []string) (ReleaseFunc, error) {
	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		release, err := l.TryAcquire(ctx, keys)
		if err == nil {
			return release, nil
		}
		if _, busy := err.(*BusyError); !busy {
			return nil, err
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire seat locks: %w", ctx.Err())
		}
	}
}

func (l *RedisLocker) release(keys []string, token string) {
	// the caller's ctx may already be cancelled; unlocking must still happen
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	unlockScript.Run(ctx, l.client, l.redisKeys(keys), token)
}

func (l *RedisLocker) redisKeys(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = l.prefix + k
	}
	return out
}
