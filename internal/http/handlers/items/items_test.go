package items

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	badgeService "github.com/princekumarofficial/marketplace-service/internal/badges"
	"github.com/princekumarofficial/marketplace-service/internal/http/middleware"
	"github.com/princekumarofficial/marketplace-service/internal/storage/storagetest"
	"github.com/princekumarofficial/marketplace-service/internal/types"
	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
	"github.com/princekumarofficial/marketplace-service/internal/types/users"
)

func do(h http.HandlerFunc, body, userID, itemID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(context.Background(), userID))
	if itemID != "" {
		req.SetPathValue("id", itemID)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) types.MutationResponse {
	t.Helper()
	var resp types.MutationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestPostItem_UnlocksListingBadges(t *testing.T) {
	store := storagetest.NewMemory()
	sellerID, _ := store.CreateUser(context.Background(), "s@x.co", "hash", "Sam", users.RoleUser)
	refresher := badgeService.NewService(store, nil, nil)

	body := `{"id":"8c7e1f0a-1b2c-4d3e-8f90-123456789abc","title":"Bike","price":40,
		"image_urls":["https://cdn.example.com/items/1/8c7e1f0a-1b2c-4d3e-8f90-123456789abc/a.png"]}`
	rec := do(PostItem(store, refresher), body, sellerID, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp.ID != "8c7e1f0a-1b2c-4d3e-8f90-123456789abc" {
		t.Fatalf("Expected client item id to be kept, got %q", resp.ID)
	}
	if len(resp.NewBadges) != 1 || resp.NewBadges[0] != badges.FirstListing {
		t.Fatalf("Expected [firstListing], got %v", resp.NewBadges)
	}

	for i := 0; i < 3; i++ {
		resp = decode(t, do(PostItem(store, refresher), `{"title":"More"}`, sellerID, ""))
		if len(resp.NewBadges) != 0 {
			t.Fatalf("Listing %d: expected no new badges, got %v", i+2, resp.NewBadges)
		}
	}

	resp = decode(t, do(PostItem(store, refresher), `{"title":"Fifth"}`, sellerID, ""))
	if len(resp.NewBadges) != 1 || resp.NewBadges[0] != badges.CommunitySeller {
		t.Fatalf("Expected [communitySeller] on fifth listing, got %v", resp.NewBadges)
	}
}

func TestPostItem_DuplicateID(t *testing.T) {
	store := storagetest.NewMemory()
	sellerID, _ := store.CreateUser(context.Background(), "s@x.co", "hash", "Sam", users.RoleUser)
	refresher := badgeService.NewService(store, nil, nil)

	body := `{"id":"8c7e1f0a-1b2c-4d3e-8f90-123456789abc","title":"Bike","price":40}`
	if rec := do(PostItem(store, refresher), body, sellerID, ""); rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(PostItem(store, refresher), body, sellerID, ""); rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for a reused item id, got %d: %s", rec.Code, rec.Body.String())
	}

	u, _ := store.GetUser(context.Background(), sellerID)
	if u.Counters.ListingCount != 1 {
		t.Fatalf("Expected listing count 1 after a rejected duplicate, got %d", u.Counters.ListingCount)
	}
}

func TestPostItem_Validation(t *testing.T) {
	store := storagetest.NewMemory()
	refresher := badgeService.NewService(store, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"missing title", `{"price":1}`},
		{"bad id", `{"id":"nope","title":"x"}`},
		{"bad image url", `{"title":"x","image_urls":["not a url"]}`},
		{"negative price", `{"title":"x","price":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(PostItem(store, refresher), tt.body, "1", ""); rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestShareItem(t *testing.T) {
	store := storagetest.NewMemory()
	sellerID, _ := store.CreateUser(context.Background(), "s@x.co", "hash", "Sam", users.RoleUser)
	sharerID, _ := store.CreateUser(context.Background(), "h@x.co", "hash", "Hal", users.RoleUser)
	itemID, _ := store.CreateItem(context.Background(), sellerID, types.ItemPostRequest{Title: "Bike"})
	refresher := badgeService.NewService(store, nil, nil)

	if rec := do(ShareItem(store, refresher), "", sharerID, "missing"); rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown item, got %d", rec.Code)
	}

	var last types.MutationResponse
	for i := 0; i < 3; i++ {
		rec := do(ShareItem(store, refresher), "", sharerID, itemID)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		last = decode(t, rec)
	}
	if len(last.NewBadges) != 1 || last.NewBadges[0] != badges.HelperBee {
		t.Fatalf("Expected [helperBee] on third share, got %v", last.NewBadges)
	}
}
