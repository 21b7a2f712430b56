package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter limits request rates per user (or client IP for anonymous
// callers).
type RateLimiter interface {
	AllowUser(ctx context.Context, userID string) (bool, error)
}

// tokenBucketScript implements a token bucket in Redis so the limit holds
// across all processes behind the same Redis.
var tokenBucketScript = redis.NewScript(`
local tokens_key = KEYS[1] .. ":tokens"
local ts_key = KEYS[1] .. ":ts"
local now = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])

local tokens = tonumber(redis.call("get", tokens_key) or burst)
local last = tonumber(redis.call("get", ts_key) or 0)

local elapsed = math.max(0, now - last)
tokens = math.min(burst, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call("set", tokens_key, tokens, "EX", 60)
redis.call("set", ts_key, now, "EX", 60)
return allowed
`)

// RedisRateLimiter is a per-user token bucket backed by Redis.
type RedisRateLimiter struct {
	keyPrefix string
	rate      int
	burst     int
}

// NewRedisRateLimiter creates a RedisRateLimiter allowing ratePerSec
// requests per user with the given burst capacity.
func NewRedisRateLimiter(keyPrefix string, ratePerSec, burst int) *RedisRateLimiter {
	return &RedisRateLimiter{
		keyPrefix: fmt.Sprintf("rate_limit:%s", keyPrefix),
		rate:      ratePerSec,
		burst:     burst,
	}
}

func (l *RedisRateLimiter) AllowUser(ctx context.Context, userID string) (bool, error) {
	client, err := GetClient()
	if err != nil {
		return false, ErrRedisNotAvailable
	}

	key := fmt.Sprintf("%s:%s", l.keyPrefix, userID)
	allowed, err := tokenBucketScript.Run(ctx, client,
		[]string{key}, time.Now().Unix(), l.rate, l.burst).Int()
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

// LocalRateLimiter is the in-process fallback used when Redis is down. It
// only bounds a single process, which is still enough to protect the
// database from one misbehaving client.
type LocalRateLimiter struct {
	rate  rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLocalRateLimiter creates a LocalRateLimiter.
func NewLocalRateLimiter(ratePerSec, burst int) *LocalRateLimiter {
	return &LocalRateLimiter{
		rate:     rate.Limit(ratePerSec),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *LocalRateLimiter) AllowUser(_ context.Context, userID string) (bool, error) {
	l.mu.Lock()
	limiter, ok := l.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[userID] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow(), nil
}

// FallbackRateLimiter tries Redis first and silently degrades to the local
// limiter when Redis is unavailable.
type FallbackRateLimiter struct {
	primary  *RedisRateLimiter
	fallback *LocalRateLimiter
}

// NewFallbackRateLimiter creates the limiter used by the HTTP middleware.
func NewFallbackRateLimiter(keyPrefix string, ratePerSec, burst int) *FallbackRateLimiter {
	return &FallbackRateLimiter{
		primary:  NewRedisRateLimiter(keyPrefix, ratePerSec, burst),
		fallback: NewLocalRateLimiter(ratePerSec, burst),
	}
}

func (l *FallbackRateLimiter) AllowUser(ctx context.Context, userID string) (bool, error) {
	allowed, err := l.primary.AllowUser(ctx, userID)
	if err != nil {
		return l.fallback.AllowUser(ctx, userID)
	}
	return allowed, nil
}
