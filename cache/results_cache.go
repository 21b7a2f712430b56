package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"votapp-backend/models"
)

const (
	resultsTTL      = 30 * time.Second
	rebuildLockTTL  = 5 * time.Second
	rebuildLockName = "lock:results:%s"
)

// ResultsCache is a read-through cache for voting results. The database
// stays authoritative: entries are short-lived and dropped after every
// mutation, so a stale read can only lag by one invalidation race within
// the TTL. A redsync lock keeps concurrent misses on a hot voting from
// stampeding the database.
type ResultsCache struct {
	locks *DistributedLockService
}

// NewResultsCache creates a ResultsCache. Works with or without Redis.
func NewResultsCache() *ResultsCache {
	return &ResultsCache{locks: NewLockService()}
}

func resultsKey(votingID string) string {
	return fmt.Sprintf("voting:%s:results", votingID)
}

// Get returns cached results or loads them via loader, caching the outcome.
func (c *ResultsCache) Get(ctx context.Context, votingID string, loader func() (*models.VotingResults, error)) (*models.VotingResults, error) {
	client, err := GetClient()
	if err != nil {
		return loader()
	}

	key := resultsKey(votingID)
	if cached, err := c.read(ctx, client, key); err == nil {
		return cached, nil
	}

	// Cache miss. Take the per-voting rebuild lock so one process fills
	// the entry while the rest briefly retry the cache.
	var results *models.VotingResults
	rebuild := func() error {
		if cached, err := c.read(ctx, client, key); err == nil {
			results = cached
			return nil
		}
		loaded, err := loader()
		if err != nil {
			return err
		}
		results = loaded
		c.write(ctx, client, key, loaded)
		return nil
	}

	if c.locks != nil {
		if err := c.locks.WithLock(fmt.Sprintf(rebuildLockName, votingID), rebuildLockTTL, rebuild); err != nil {
			if errors.Is(err, ErrLockNotAcquired) {
				return loader()
			}
			return nil, err
		}
		return results, nil
	}

	if err := rebuild(); err != nil {
		return nil, err
	}
	return results, nil
}

// Invalidate drops the cached results for a voting. Called after every
// successful cast, update, close, and delete.
func (c *ResultsCache) Invalidate(ctx context.Context, votingID string) {
	client, err := GetClient()
	if err != nil {
		return
	}
	if err := client.Del(ctx, resultsKey(votingID)).Err(); err != nil {
		log.Printf("failed to invalidate results cache for %s: %v", votingID, err)
	}
}

func (c *ResultsCache) read(ctx context.Context, client *redis.Client, key string) (*models.VotingResults, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	var results models.VotingResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

func (c *ResultsCache) write(ctx context.Context, client *redis.Client, key string, results *models.VotingResults) {
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := client.Set(ctx, key, data, resultsTTL).Err(); err != nil {
		log.Printf("failed to cache results under %s: %v", key, err)
	}
}
