package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"votapp-backend/config"
)

var (
	redisClient *redis.Client
	redisMu     sync.RWMutex
)

// InitRedis connects to Redis. A failure is not fatal: the service keeps
// running against the database alone and every cache call degrades to a
// no-op.
func InitRedis(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return err
	}

	redisMu.Lock()
	redisClient = client
	redisMu.Unlock()

	log.Println("redis connection established")
	return nil
}

// GetClient returns the shared Redis client, or ErrRedisNotAvailable when
// Redis was never initialized.
func GetClient() (*redis.Client, error) {
	redisMu.RLock()
	defer redisMu.RUnlock()
	if redisClient == nil {
		return nil, ErrRedisNotAvailable
	}
	return redisClient, nil
}

// CloseRedis shuts the connection down.
func CloseRedis() {
	redisMu.Lock()
	defer redisMu.Unlock()
	if redisClient == nil {
		return
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("failed to close redis: %v", err)
	}
	redisClient = nil
}
