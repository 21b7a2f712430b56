package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRateLimiter_Burst(t *testing.T) {
	limiter := NewLocalRateLimiter(1, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.AllowUser(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d within burst", i)
	}

	allowed, err := limiter.AllowUser(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, allowed, "burst exhausted")
}

func TestLocalRateLimiter_PerUser(t *testing.T) {
	limiter := NewLocalRateLimiter(1, 1)
	ctx := context.Background()

	allowed, _ := limiter.AllowUser(ctx, "u1")
	assert.True(t, allowed)
	allowed, _ = limiter.AllowUser(ctx, "u1")
	assert.False(t, allowed)

	// One user's exhaustion does not affect another.
	allowed, _ = limiter.AllowUser(ctx, "u2")
	assert.True(t, allowed)
}

func TestFallbackRateLimiter_NoRedis(t *testing.T) {
	limiter := NewFallbackRateLimiter("test", 1, 2)
	ctx := context.Background()

	// Without Redis the local limiter takes over transparently.
	for i := 0; i < 2; i++ {
		allowed, err := limiter.AllowUser(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := limiter.AllowUser(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, allowed)
}
