package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/princekumarofficial/marketplace-service/internal/storage"
	"github.com/princekumarofficial/marketplace-service/internal/types"
	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
	"github.com/princekumarofficial/marketplace-service/internal/types/users"
)

// CacheService wraps storage with Redis caching
type CacheService struct {
	storage storage.Storage
	redis   *redis.Client
}

// NewCacheService creates a new cache service
func NewCacheService(storage storage.Storage, redisClient *redis.Client) *CacheService {
	return &CacheService{
		storage: storage,
		redis:   redisClient,
	}
}

// Cache key patterns
const (
	UserKey = "user:record:%s" // user:record:userID
)

// Cache durations
const (
	UserCacheDuration = 2 * time.Minute
)

// GetUser returns the cached user record or fetches it from the DB.
func (c *CacheService) GetUser(ctx context.Context, userID string) (users.User, error) {
	key := fmt.Sprintf(UserKey, userID)

	// Try cache first
	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var user users.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return user, nil
		}
	}

	// Cache miss - fetch from database
	user, err := c.storage.GetUser(ctx, userID)
	if err != nil {
		return user, err
	}

	data, _ := json.Marshal(user)
	if err := c.redis.Set(ctx, key, data, UserCacheDuration).Err(); err != nil {
		slog.Warn("Failed to cache user record", slog.String("user_id", userID), slog.String("error", err.Error()))
	}

	return user, nil
}

// InvalidateUser clears the cached record for the given users.
func (c *CacheService) InvalidateUser(ctx context.Context, userIDs ...string) {
	if len(userIDs) == 0 {
		return
	}

	keys := make([]string, len(userIDs))
	for i, userID := range userIDs {
		keys[i] = fmt.Sprintf(UserKey, userID)
	}

	c.redis.Del(ctx, keys...)
}

// Methods to pass through to storage (implement storage.Storage interface)
func (c *CacheService) CreateUser(ctx context.Context, email, password, name string, role users.Role) (string, error) {
	return c.storage.CreateUser(ctx, email, password, name, role)
}

func (c *CacheService) GetUserByEmail(ctx context.Context, email string) (string, string, error) {
	return c.storage.GetUserByEmail(ctx, email)
}

func (c *CacheService) UpdateProfile(ctx context.Context, userID string, req users.ProfileUpdateRequest) error {
	defer c.InvalidateUser(ctx, userID)
	return c.storage.UpdateProfile(ctx, userID, req)
}

func (c *CacheService) AddBadges(ctx context.Context, userID string, keys []badges.BadgeKey) error {
	defer c.InvalidateUser(ctx, userID)
	return c.storage.AddBadges(ctx, userID, keys)
}

func (c *CacheService) ListUserIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	return c.storage.ListUserIDs(ctx, afterID, limit)
}

func (c *CacheService) CreateItem(ctx context.Context, sellerID string, req types.ItemPostRequest) (string, error) {
	defer c.InvalidateUser(ctx, sellerID)
	return c.storage.CreateItem(ctx, sellerID, req)
}

func (c *CacheService) ShareItem(ctx context.Context, itemID, userID string) error {
	defer c.InvalidateUser(ctx, userID)
	return c.storage.ShareItem(ctx, itemID, userID)
}

func (c *CacheService) CreateCampaign(ctx context.Context, ngoID string, req types.CampaignPostRequest) (string, error) {
	return c.storage.CreateCampaign(ctx, ngoID, req)
}

func (c *CacheService) RecordDonation(ctx context.Context, campaignID, donorID string, amount float64) (string, error) {
	defer c.InvalidateUser(ctx, donorID)
	return c.storage.RecordDonation(ctx, campaignID, donorID, amount)
}
