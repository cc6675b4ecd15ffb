// Package lock serializes ledger mutations per resource. Appending to the
// activation history is a read-modify-write of the whole sequence, so two
// concurrent activate calls on the same resource would lose events without it.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lease is already held.
var ErrNotAcquired = errors.New("lock not acquired")

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker hands out short leases keyed by resource identifier. With a redis
// client the lease is cluster-wide; without one it degrades to an in-process
// mutex per key, which is only safe for a single node.
type Locker struct {
	client *redis.Client
	script *redis.Script

	mu    sync.Mutex
	local map[string]*sync.Mutex
}

func NewLocker(client *redis.Client) *Locker {
	l := &Locker{
		client: client,
		local:  make(map[string]*sync.Mutex),
	}
	if client != nil {
		l.script = redis.NewScript(lockReleaseScript)
	}
	return l
}

// Acquire takes the lease for key, blocking callers on the in-process path
// and returning ErrNotAcquired when a redis lease is already held elsewhere.
// The returned token must be passed back to Release.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return "", errors.New("lock ttl must be positive")
	}

	if l.client == nil {
		l.localMutex(key).Lock()
		return "", nil
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotAcquired
	}
	return token, nil
}

func (l *Locker) Release(ctx context.Context, key, token string) error {
	if key == "" {
		return nil
	}

	if l.client == nil {
		l.localMutex(key).Unlock()
		return nil
	}

	if token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}

func (l *Locker) localMutex(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	mu, ok := l.local[key]
	if !ok {
		mu = &sync.Mutex{}
		l.local[key] = mu
	}
	return mu
}
