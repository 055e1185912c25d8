package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Sliding-window log kept in a sorted set scored by hit time. A denied hit is
// not recorded, so a client hammering the endpoint is let back in once its
// oldest accepted hit leaves the window.
//
// KEYS[1] = hit log
// ARGV[1] = now (ms), ARGV[2] = window (ms), ARGV[3] = limit, ARGV[4] = member
//
// Returns {allowed, hits in window, retry after (ms)}.
const luaSlidingWindow = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local retry = tonumber(oldest[2]) + window - now
  if retry < 1 then retry = 1 end
  return {0, count, retry}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, 0}
`

// SlidingWindowLimiter admits at most limit hits per subject within any
// window-long span. Each scope, for example "reservations", keeps its own logs.
// A non-positive limit admits everything.
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int
	window time.Duration
	script *redis.Script
	now    func() time.Time
}

func NewSlidingWindowLimiter(
	rdb *redis.Client,
	scope string,
	limit int,
	window time.Duration,
) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		rdb:    rdb,
		scope:  scope,
		limit:  limit,
		window: window,
		script: redis.NewScript(luaSlidingWindow),
		now:    time.Now,
	}
}

// Allow records a hit for subject if it fits the window. When it does not,
// retryAfter is how long until the oldest hit expires.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, subject string) (allowed bool, current int64, retryAfter time.Duration, err error) {
	const op = "redisrepo.SlidingWindowLimiter.Allow"

	if l.limit <= 0 {
		return true, 0, 0, nil
	}

	res, err := l.script.Run(
		ctx,
		l.rdb,
		[]string{KeyRateLimit(l.scope, subject)},
		l.now().UnixMilli(), l.window.Milliseconds(), l.limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return false, 0, 0, fmt.Errorf("%s:%w", op, err)
	}
	if len(res) != 3 {
		return false, 0, 0, fmt.Errorf("%s: unexpected script result %v", op, res)
	}

	return res[0] == 1, res[1], time.Duration(res[2]) * time.Millisecond, nil
}
