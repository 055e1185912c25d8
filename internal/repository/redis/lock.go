package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Release deletes the key only while it still holds our token.
const luaRelease = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`

// Locker is a best-effort distributed mutex for periodic jobs that must run on
// one instance at a time. The TTL bounds how long a crashed holder blocks
// the others.
type Locker struct {
	rdb     *redis.Client
	release *redis.Script
}

func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{rdb: rdb, release: redis.NewScript(luaRelease)}
}

// TryLock acquires name for ttl. It reports false without error when another
// holder owns the lock. The returned func releases it.
func (l *Locker) TryLock(ctx context.Context, name string, ttl time.Duration) (bool, func(context.Context), error) {
	key := KeyLock(name)
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return false, func(context.Context) {}, err
	}

	return true, func(ctx context.Context) {
		_ = l.release.Run(ctx, l.rdb, []string{key}, token).Err()
	}, nil
}
