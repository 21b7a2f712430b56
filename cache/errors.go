package cache

import "errors"

var (
	// ErrRedisNotAvailable is returned when no Redis connection is up.
	// Callers fall back to the database; caching is never load-bearing.
	ErrRedisNotAvailable = errors.New("redis not available")

	// ErrLockNotAcquired is returned when the distributed lock could not
	// be taken within its retry budget.
	ErrLockNotAcquired = errors.New("could not acquire distributed lock")

	// ErrKeyNotFound is returned on a cache miss.
	ErrKeyNotFound = errors.New("key not found")
)
