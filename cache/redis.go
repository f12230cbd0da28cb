package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reviewservice/models"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrMiss is returned by Get when the key is absent or the cache is disabled.
	ErrMiss = errors.New("cache miss")
	// ErrStale is returned by a fill when a write bumped the version after it was read.
	ErrStale = errors.New("cache version changed")
)

// ==================== CACHE KEYS ====================

const (
	ReviewsCacheKey    = "reviews:all"     // list of every review
	ReviewsVersionKey  = "reviews:version" // bumped on every review write
	ReviewCachePrefix  = "review:"         // review:123, review:123:version
	RateLimitKeyPrefix = "ratelimit:"      // ratelimit:<client>

	ReviewsTTL = 5 * time.Minute
	ReviewTTL  = 10 * time.Minute
	VersionTTL = 24 * time.Hour
)

// setIfVersion writes KEYS[2] only while KEYS[1] still holds the version the
// caller read before querying the database. A missing version counts as 0.
var setIfVersion = redis.NewScript(`
local current = redis.call("GET", KEYS[1]) or "0"
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// Cache wraps a Redis client. A nil *Cache, or one without a client, behaves
// as an always-missing cache so callers never need to branch on availability.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection with a ping.
func New(addr, password string) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Cache{client: client}, nil
}

// NewWithClient wraps an existing client without pinging it.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Enabled reports whether a client is configured.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// IsAvailable pings Redis.
func (c *Cache) IsAvailable(ctx context.Context) bool {
	if !c.Enabled() {
		return false
	}
	return c.client.Ping(ctx).Err() == nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// ==================== GENERIC CACHE OPERATIONS ====================

// Version returns the write counter stored under key, 0 when unset.
func (c *Cache) Version(ctx context.Context, key string) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	v, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return v, nil
}

// SetIfVersion stores value with TTL unless versionKey moved past version.
// It returns ErrStale when the write was skipped.
func (c *Cache) SetIfVersion(ctx context.Context, versionKey string, version int64, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	stored, err := setIfVersion.Run(ctx, c.client, []string{versionKey, key}, version, data, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	if stored == 0 {
		return ErrStale
	}
	return nil
}

// Get retrieves value from cache
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Enabled() {
		return ErrMiss
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to get value: %w", err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return nil
}

// ==================== REVIEWS CACHING ====================

func reviewKey(id uint) string {
	return fmt.Sprintf("%s%d", ReviewCachePrefix, id)
}

func reviewVersionKey(id uint) string {
	return reviewKey(id) + ":version"
}

// ReviewsVersion must be read before the list is queried; pass it to SetReviews.
func (c *Cache) ReviewsVersion(ctx context.Context) (int64, error) {
	return c.Version(ctx, ReviewsVersionKey)
}

// ReviewVersion must be read before the review is queried; pass it to SetReview.
func (c *Cache) ReviewVersion(ctx context.Context, id uint) (int64, error) {
	return c.Version(ctx, reviewVersionKey(id))
}

// GetReviews returns the cached review list
func (c *Cache) GetReviews(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	if err := c.Get(ctx, ReviewsCacheKey, &reviews); err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// SetReviews caches the review list for 5 minutes if no write happened since
// version was read.
func (c *Cache) SetReviews(ctx context.Context, reviews []models.Review, version int64) error {
	return c.SetIfVersion(ctx, ReviewsVersionKey, version, ReviewsCacheKey, reviews, ReviewsTTL)
}

// GetReview returns a cached review
func (c *Cache) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := c.Get(ctx, reviewKey(id), &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// SetReview caches a review for 10 minutes if it was not written since
// version was read.
func (c *Cache) SetReview(ctx context.Context, review *models.Review, version int64) error {
	return c.SetIfVersion(ctx, reviewVersionKey(review.ID), version, reviewKey(review.ID), review, ReviewTTL)
}

// InvalidateReviews bumps the list version and the version of each id, then
// drops the cached entries, all in one transaction. Fills that started before
// the bump are rejected by SetIfVersion.
func (c *Cache) InvalidateReviews(ctx context.Context, ids ...uint) error {
	if !c.Enabled() {
		return nil
	}
	versions := []string{ReviewsVersionKey}
	keys := []string{ReviewsCacheKey}
	for _, id := range ids {
		versions = append(versions, reviewVersionKey(id))
		keys = append(keys, reviewKey(id))
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, v := range versions {
			pipe.Incr(ctx, v)
			pipe.Expire(ctx, v, VersionTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	return err
}

// ==================== RATE LIMITING ====================

// CheckRateLimit counts a hit for client inside a fixed window. It reports
// whether the hit is allowed and how many remain in the window.
func (c *Cache) CheckRateLimit(ctx context.Context, client string, maxRequests int, window time.Duration) (bool, int, error) {
	if !c.Enabled() {
		return true, maxRequests, nil
	}
	key := RateLimitKeyPrefix + client

	// The window starts with the first hit; later hits keep its expiry.
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	remaining := maxRequests - int(incr.Val())
	if remaining < 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}
