package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/biblioteca/library-system/internal/core/domain"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// LoginLimiter caps login attempts per client key in a fixed time window.
type LoginLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewLoginLimiter(client *redis.Client, limit int, window time.Duration) (*LoginLimiter, error) {
	if limit <= 0 || window < time.Millisecond {
		return nil, errors.New("login limiter requires a positive limit and a window of at least 1ms")
	}
	return &LoginLimiter{
		client: client,
		prefix: "ratelimit:login",
		limit:  limit,
		window: window,
		now:    time.Now,
	}, nil
}

// Allow counts one attempt for key. It fails closed: a Redis error is
// returned together with false.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	windowMs := l.window.Milliseconds()
	slot := l.now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		return false, domain.StorageError("login limiter", err)
	}
	return count <= int64(l.limit), nil
}
