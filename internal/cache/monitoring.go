package cache

import (
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/princekumarofficial/marketplace-service/internal/utils/response"
)

// CacheStats represents cache statistics
type CacheStats struct {
	RedisConnected bool     `json:"redis_connected"`
	CachedUsers    int      `json:"cached_users"`
	RateLimitKeys  int      `json:"rate_limit_keys"`
	CacheKeys      []string `json:"cache_keys_sample"`
	KeyCount       int      `json:"total_keys"`
}

// patterns selectable by ClearCache
var clearPatterns = map[string]string{
	"users":     "user:record:*",
	"ratelimit": "rate_limit:*",
	"all":       "*",
}

// GetCacheStats returns cache statistics
func GetCacheStats(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		stats := CacheStats{RedisConnected: true}

		if err := redisClient.Ping(ctx).Err(); err != nil {
			stats.RedisConnected = false
			response.WriteJSON(w, http.StatusOK, response.RequestOK("Cache stats retrieved", stats))
			return
		}

		userKeys, err := scanKeys(r, redisClient, clearPatterns["users"])
		if err == nil {
			stats.CachedUsers = len(userKeys)
			stats.CacheKeys = userKeys[:min(len(userKeys), 10)]
		}

		limitKeys, err := scanKeys(r, redisClient, clearPatterns["ratelimit"])
		if err == nil {
			stats.RateLimitKeys = len(limitKeys)
		}

		if size, err := redisClient.DBSize(ctx).Result(); err == nil {
			stats.KeyCount = int(size)
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Cache stats retrieved", stats))
	}
}

// ClearCache endpoint for administrative purposes
func ClearCache(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pattern, ok := clearPatterns[r.URL.Query().Get("type")]
		if !ok {
			pattern = clearPatterns["users"]
		}

		keys, err := scanKeys(r, redisClient, pattern)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		if len(keys) == 0 {
			result := map[string]interface{}{
				"pattern":      pattern,
				"deleted_keys": 0,
			}
			response.WriteJSON(w, http.StatusOK, response.RequestOK("No cache keys to clear", result))
			return
		}

		deleted, err := redisClient.Del(r.Context(), keys...).Result()
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		result := map[string]interface{}{
			"pattern":      pattern,
			"deleted_keys": deleted,
			"keys_sample":  keys[:min(len(keys), 5)],
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Cache cleared successfully", result))
	}
}

func scanKeys(r *http.Request, redisClient *redis.Client, pattern string) ([]string, error) {
	var keys []string
	iter := redisClient.Scan(r.Context(), 0, pattern, 100).Iterator()
	for iter.Next(r.Context()) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

// RegisterAdminRoutes mounts the cache endpoints on mux, each wrapped in guard.
func RegisterAdminRoutes(mux *http.ServeMux, redisClient *redis.Client, guard func(http.Handler) http.Handler) {
	mux.Handle("GET /admin/cache/stats", guard(GetCacheStats(redisClient)))
	mux.Handle("DELETE /admin/cache", guard(ClearCache(redisClient)))
}
