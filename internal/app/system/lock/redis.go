package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultTTL   = 2 * time.Minute
	defaultRetry = 50 * time.Millisecond
	keyPrefix    = "flowhub:lock:"
)

// releaseScript deletes the key only while it still holds our token, so
// an expired-and-reacquired lock is never released by its old owner.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis is a Locker backed by SET NX PX. TTL bounds how long a crashed
// holder can block others; it should exceed the longest critical section.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	log    *zap.Logger
}

// NewRedis returns a Redis locker. A zero ttl uses two minutes.
func NewRedis(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, ttl: ttl, retry: defaultRetry, log: logger}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	full := keyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, full, token, r.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			break
		}

		t := time.NewTimer(r.retry)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, r.client, []string{full}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				r.log.Warn("lock release failed; it will expire on its own",
					zap.String("key", key),
					zap.Duration("ttl", r.ttl),
					zap.Error(err))
			}
		})
	}, nil
}
