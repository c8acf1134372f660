package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/princekumarofficial/marketplace-service/internal/http/middleware"
	"github.com/princekumarofficial/marketplace-service/internal/storage/storagetest"
	"github.com/princekumarofficial/marketplace-service/internal/types"
	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
	"github.com/princekumarofficial/marketplace-service/internal/types/users"
	"github.com/princekumarofficial/marketplace-service/internal/utils/jwt"
)

func setup(t *testing.T) (*CacheService, *storagetest.Memory, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	store := storagetest.NewMemory()
	return NewCacheService(store, client), store, mr, client
}

func TestGetUser_ReadThrough(t *testing.T) {
	ctx := context.Background()
	svc, store, mr, _ := setup(t)
	userID, _ := store.CreateUser(ctx, "a@b.co", "hash", "Ann", users.RoleUser)

	u, err := svc.GetUser(ctx, userID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if u.Email != "a@b.co" {
		t.Fatalf("Unexpected user: %+v", u)
	}

	key := fmt.Sprintf(UserKey, userID)
	if !mr.Exists(key) {
		t.Fatalf("Expected %s to be cached", key)
	}
	if ttl := mr.TTL(key); ttl != UserCacheDuration {
		t.Fatalf("Expected TTL %v, got %v", UserCacheDuration, ttl)
	}

	// the cached copy is served even if the store changes underneath
	store.AddBadges(ctx, userID, []badges.BadgeKey{badges.HelperBee})
	u, _ = svc.GetUser(ctx, userID)
	if u.Counters.HasBadge(badges.HelperBee) {
		t.Fatal("Expected stale cached record before invalidation")
	}
}

func TestWritesInvalidate(t *testing.T) {
	ctx := context.Background()
	svc, store, mr, _ := setup(t)
	userID, _ := store.CreateUser(ctx, "a@b.co", "hash", "Ann", users.RoleUser)
	key := fmt.Sprintf(UserKey, userID)

	writes := []struct {
		name string
		fn   func() error
	}{
		{"AddBadges", func() error { return svc.AddBadges(ctx, userID, []badges.BadgeKey{badges.ProfilePro}) }},
		{"CreateItem", func() error {
			_, err := svc.CreateItem(ctx, userID, types.ItemPostRequest{Title: "Bike"})
			return err
		}},
		{"UpdateProfile", func() error {
			name := "Annie"
			return svc.UpdateProfile(ctx, userID, users.ProfileUpdateRequest{Name: &name})
		}},
	}

	for _, w := range writes {
		t.Run(w.name, func(t *testing.T) {
			if _, err := svc.GetUser(ctx, userID); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !mr.Exists(key) {
				t.Fatal("Expected cached record")
			}
			if err := w.fn(); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if mr.Exists(key) {
				t.Fatal("Expected cached record to be invalidated")
			}
		})
	}

	u, _ := svc.GetUser(ctx, userID)
	if !u.Counters.HasBadge(badges.ProfilePro) || u.Counters.ListingCount != 1 || u.Name != "Annie" {
		t.Fatalf("Expected fresh record after writes, got %+v", u)
	}
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	_, _, mr, client := setup(t)
	mr.Set(fmt.Sprintf(UserKey, "1"), "{}")
	mr.Set(fmt.Sprintf(UserKey, "2"), "{}")
	mr.Set("rate_limit:1:tickets", "x")

	rec := httptest.NewRecorder()
	ClearCache(client)(rec, httptest.NewRequest(http.MethodDelete, "/admin/cache?type=users", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data struct {
			DeletedKeys int `json:"deleted_keys"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Data.DeletedKeys != 2 {
		t.Fatalf("Expected 2 deleted keys, got %d", resp.Data.DeletedKeys)
	}
	if !mr.Exists("rate_limit:1:tickets") {
		t.Fatal("Expected rate limit key to survive a users clear")
	}
	if n, _ := client.DBSize(ctx).Result(); n != 1 {
		t.Fatalf("Expected 1 key left, got %d", n)
	}
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	const secret = "test-secret"
	_, _, mr, client := setup(t)
	mr.Set("rate_limit:7:tickets", "x")

	router := http.NewServeMux()
	auth := middleware.AuthMiddleware(secret)
	adminOnly := middleware.AdminOnly([]string{"1"})
	RegisterAdminRoutes(router, client, func(h http.Handler) http.Handler { return auth(adminOnly(h)) })

	send := func(method, target, userID string) int {
		req := httptest.NewRequest(method, target, nil)
		if userID != "" {
			token, err := jwt.CreateToken(userID, secret)
			if err != nil {
				t.Fatalf("Failed to create token: %v", err)
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(http.MethodDelete, "/admin/cache?type=ratelimit", ""); code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without a token, got %d", code)
	}
	if code := send(http.MethodDelete, "/admin/cache?type=ratelimit", "7"); code != http.StatusForbidden {
		t.Fatalf("Expected 403 for a regular user, got %d", code)
	}
	if code := send(http.MethodGet, "/admin/cache/stats", "7"); code != http.StatusForbidden {
		t.Fatalf("Expected 403 on stats for a regular user, got %d", code)
	}
	if !mr.Exists("rate_limit:7:tickets") {
		t.Fatal("Expected rate limit bucket to survive a refused clear")
	}

	if code := send(http.MethodDelete, "/admin/cache?type=ratelimit", "1"); code != http.StatusOK {
		t.Fatalf("Expected 200 for an admin, got %d", code)
	}
	if mr.Exists("rate_limit:7:tickets") {
		t.Fatal("Expected admin clear to remove the rate limit bucket")
	}
}
