package repositories

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/etendy/backend/internal/models"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultRoleCacheTTL is used when the cache is created with a zero TTL
const DefaultRoleCacheTTL = 5 * time.Minute

// writeGenerationStripes bounds the write generation table; keys share a stripe by hash
const writeGenerationStripes = 256

// RedisClient is the subset of the Redis client used by the cache and the token denylist
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// roleStore is the store wrapped by the cache
type roleStore interface {
	GetRole(ctx context.Context, userID string) (models.Role, error)
	SetRole(ctx context.Context, userID string, role models.Role, grantedBy string) error
	TransitionRole(ctx context.Context, userID string, from, to models.Role, grantedBy string) error
	ListAllWithRoles(ctx context.Context) ([]models.UserRole, error)
}

// cachedRoleStore is a read-through Redis cache in front of a role store.
//
// Redis failures never fail a read, the wrapped store is asked instead.
// A load only fills the cache if no write to the same stripe committed while it ran.
type cachedRoleStore struct {
	store  roleStore
	client RedisClient
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger

	mu          sync.Mutex
	generations [writeGenerationStripes]uint64
}

// NewCachedRoleStore wraps store with a Redis cache
func NewCachedRoleStore(store roleStore, client RedisClient, ttl time.Duration, logger *zap.Logger) *cachedRoleStore {
	if ttl <= 0 {
		ttl = DefaultRoleCacheTTL
	}
	return &cachedRoleStore{
		store:  store,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func roleCacheKey(userID string) string {
	return "role:" + userID
}

// GetRole returns the cached role or loads it from the wrapped store
func (c *cachedRoleStore) GetRole(ctx context.Context, userID string) (models.Role, error) {
	key := roleCacheKey(userID)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if role := models.Role(cached); role.Valid() {
			return role, nil
		}
		c.logger.Warn("invalid role in cache", zap.String("cache_key", key), zap.String("value", cached))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("failed to read role cache", zap.String("cache_key", key), zap.Error(err))
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		// Shared by every waiting caller, detached from the first caller's cancellation
		loadCtx := context.WithoutCancel(ctx)
		generation := c.generation(key)

		role, err := c.store.GetRole(loadCtx, userID)
		if err != nil {
			return nil, err
		}
		c.fill(loadCtx, key, role, generation)
		return role, nil
	})
	if err != nil {
		return "", err
	}
	return value.(models.Role), nil
}

// SetRole writes through to the wrapped store and drops the cached entry
func (c *cachedRoleStore) SetRole(ctx context.Context, userID string, role models.Role, grantedBy string) error {
	if err := c.store.SetRole(ctx, userID, role, grantedBy); err != nil {
		return err
	}
	return c.invalidate(ctx, userID)
}

// TransitionRole runs the conditional write on the wrapped store and drops the cached entry.
// A mismatch also drops it, since the cached role may be the stale one.
func (c *cachedRoleStore) TransitionRole(ctx context.Context, userID string, from, to models.Role, grantedBy string) error {
	err := c.store.TransitionRole(ctx, userID, from, to, grantedBy)
	if errors.Is(err, models.ErrRoleMismatch) {
		if invalidateErr := c.invalidate(ctx, userID); invalidateErr != nil {
			c.logger.Warn("failed to drop role cache after mismatch", zap.String("user_id", userID), zap.Error(invalidateErr))
		}
		return err
	}
	if err != nil {
		return err
	}
	return c.invalidate(ctx, userID)
}

// ListAllWithRoles is not cached
func (c *cachedRoleStore) ListAllWithRoles(ctx context.Context) ([]models.UserRole, error) {
	return c.store.ListAllWithRoles(ctx)
}

// invalidate bumps the write generation, then deletes the cached entry.
// Callers arriving after it start a fresh load instead of joining one that began before the write.
func (c *cachedRoleStore) invalidate(ctx context.Context, userID string) error {
	key := roleCacheKey(userID)

	c.mu.Lock()
	c.generations[stripeOf(key)]++
	c.mu.Unlock()
	c.group.Forget(key)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("failed to invalidate role cache", zap.String("cache_key", key), zap.Error(err))
		return fmt.Errorf("role saved but cache invalidation failed: %w", err)
	}
	return nil
}

func (c *cachedRoleStore) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[stripeOf(key)]
}

// fill caches role unless a write bumped the generation after the load started.
// The check and the Set run under the mutex; an invalidation either deletes the entry or makes the fill skip.
func (c *cachedRoleStore) fill(ctx context.Context, key string, role models.Role, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[stripeOf(key)] != generation {
		c.logger.Debug("role changed during load, not caching", zap.String("cache_key", key))
		return
	}
	if err := c.client.Set(ctx, key, string(role), c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache role", zap.String("cache_key", key), zap.Error(err))
	}
}

func stripeOf(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % writeGenerationStripes)
}
