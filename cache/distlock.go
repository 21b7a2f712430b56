package cache

import (
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
)

// DistributedLockService wraps redsync mutexes. It is used to make sure
// only one process rebuilds a hot results cache entry at a time.
type DistributedLockService struct {
	rs *redsync.Redsync
}

// NewLockService builds a lock service over the shared Redis client.
// Returns nil when Redis is unavailable; callers treat a nil service as
// "no locking, go straight to the database".
func NewLockService() *DistributedLockService {
	client, err := GetClient()
	if err != nil {
		return nil
	}
	pool := goredis.NewPool(client)
	return &DistributedLockService{rs: redsync.New(pool)}
}

// WithLock runs action while holding the named lock.
func (s *DistributedLockService) WithLock(lockName string, expiry time.Duration, action func() error) error {
	mutex := s.rs.NewMutex(lockName,
		redsync.WithExpiry(expiry),
		redsync.WithTries(5),
		redsync.WithRetryDelay(50*time.Millisecond),
	)

	if err := mutex.Lock(); err != nil {
		return ErrLockNotAcquired
	}
	defer mutex.Unlock()

	return action()
}
