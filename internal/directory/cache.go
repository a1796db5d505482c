package directory

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oakmart/storefront/internal/domain"
)

const cacheKey = "directory:users"

// Lister is the read interface the cache fronts.
type Lister interface {
	List(ctx context.Context) ([]domain.UserRecord, error)
}

// Cache is a Redis read-through cache over the user directory. Filtering is
// re-run in memory on every panel change, so the directory itself is fetched
// once per TTL window instead of once per keystroke. Redis being down is
// never fatal: the cache falls back to the repository and logs.
type Cache struct {
	rdb  *redis.Client
	repo Lister
	ttl  time.Duration
}

// NewCache creates a directory cache. ttl <= 0 disables expiry pinning and
// defaults to one minute.
func NewCache(rdb *redis.Client, repo Lister, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{rdb: rdb, repo: repo, ttl: ttl}
}

// List returns the cached directory, loading from the repository on a miss.
func (c *Cache) List(ctx context.Context) ([]domain.UserRecord, error) {
	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var users []domain.UserRecord
			if jsonErr := json.Unmarshal(data, &users); jsonErr == nil {
				return users, nil
			}
			// Corrupt payload: drop it and reload.
			c.rdb.Del(ctx, cacheKey)
		} else if err != redis.Nil {
			log.Printf("[directory] redis get failed, falling back to db: %v", err)
		}
	}

	users, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		if data, err := json.Marshal(users); err == nil {
			if err := c.rdb.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
				log.Printf("[directory] redis set failed: %v", err)
			}
		}
	}

	return users, nil
}

// Invalidate drops the cached directory so the next List hits the database.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, cacheKey).Err()
}
