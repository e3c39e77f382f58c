package lock

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/yeremiapane/fieldservice-app/utils"
)

const (
	redisKeyPrefix   = "fieldservice:lock:"
	defaultLeaseTTL  = 10 * time.Second
	defaultPollDelay = 20 * time.Millisecond
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds leases in redis so that several API instances exclude
// each other. A lease expires after ttl if its holder dies.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	poll   time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &RedisLocker{client: client, ttl: ttl, poll: defaultPollDelay}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := redisKeyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// release must survive a cancelled request context
		if err := releaseScript.Run(context.Background(), l.client, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			utils.ErrorLogger.Printf("Error releasing lock %s: %v", redisKey, err)
		}
	}, nil
}
