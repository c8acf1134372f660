// Package storagetest provides an in-memory storage.Storage for handler tests.
package storagetest

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/princekumarofficial/marketplace-service/internal/storage"
	"github.com/princekumarofficial/marketplace-service/internal/types"
	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
	"github.com/princekumarofficial/marketplace-service/internal/types/users"
)

type account struct {
	user     users.User
	password string
}

// Memory mirrors the counter semantics of the Postgres store.
type Memory struct {
	mu        sync.Mutex
	nextID    int
	accounts  map[string]*account
	items     map[string]types.Item
	campaigns map[string]types.Campaign
	donations int
}

func NewMemory() *Memory {
	return &Memory{
		accounts:  make(map[string]*account),
		items:     make(map[string]types.Item),
		campaigns: make(map[string]types.Campaign),
	}
}

func (m *Memory) CreateUser(ctx context.Context, email, password, name string, role users.Role) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.user.Email == email {
			return "", storage.ErrEmailTaken
		}
	}
	if role == "" {
		role = users.RoleUser
	}

	m.nextID++
	id := strconv.Itoa(m.nextID)
	m.accounts[id] = &account{
		user:     users.User{ID: id, Email: email, Name: name, Role: role, Counters: badges.Counters{Badges: []badges.BadgeKey{}}},
		password: password,
	}
	return id, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, a := range m.accounts {
		if a.user.Email == email {
			return id, a.password, nil
		}
	}
	return "", "", storage.ErrUserNotFound
}

func (m *Memory) GetUser(ctx context.Context, userID string) (users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[userID]
	if !ok {
		return users.User{}, storage.ErrUserNotFound
	}
	u := a.user
	u.Counters.Badges = append([]badges.BadgeKey{}, a.user.Counters.Badges...)
	return u, nil
}

func (m *Memory) UpdateProfile(ctx context.Context, userID string, req users.ProfileUpdateRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	if req.Name != nil {
		a.user.Name = *req.Name
	}
	if req.ProfilePhotoURL != nil {
		a.user.ProfilePhotoURL = *req.ProfilePhotoURL
	}
	if a.user.Name != "" && a.user.ProfilePhotoURL != "" {
		a.user.Counters.ProfileCompleted = true
	}
	return nil
}

func (m *Memory) AddBadges(ctx context.Context, userID string, keys []badges.BadgeKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	for _, k := range keys {
		if !a.user.Counters.HasBadge(k) {
			a.user.Counters.Badges = append(a.user.Counters.Badges, k)
		}
	}
	return nil
}

func (m *Memory) ListUserIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	after, _ := strconv.Atoi(afterID)
	var ids []int
	for id := range m.accounts {
		n, _ := strconv.Atoi(id)
		if n > after {
			ids = append(ids, n)
		}
	}
	sort.Ints(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]string, len(ids))
	for i, n := range ids {
		out[i] = strconv.Itoa(n)
	}
	return out, nil
}

func (m *Memory) CreateItem(ctx context.Context, sellerID string, req types.ItemPostRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[sellerID]
	if !ok {
		return "", storage.ErrUserNotFound
	}
	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}
	if _, taken := m.items[id]; taken {
		return "", storage.ErrItemExists
	}
	a.user.Counters.ListingCount++
	m.items[id] = types.Item{ID: id, SellerID: sellerID, Title: req.Title, Description: req.Description,
		Price: req.Price, ImageURLs: req.ImageURLs}
	return id, nil
}

func (m *Memory) ShareItem(ctx context.Context, itemID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[itemID]; !ok {
		return storage.ErrItemNotFound
	}
	a, ok := m.accounts[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	a.user.Counters.SharedCount++
	return nil
}

func (m *Memory) CreateCampaign(ctx context.Context, ngoID string, req types.CampaignPostRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[ngoID]; !ok {
		return "", storage.ErrUserNotFound
	}
	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}
	if _, taken := m.campaigns[id]; taken {
		return "", storage.ErrCampaignExists
	}
	m.campaigns[id] = types.Campaign{ID: id, NGOID: ngoID, Title: req.Title, Description: req.Description,
		Goal: req.Goal, ImageURLs: req.ImageURLs}
	return id, nil
}

func (m *Memory) RecordDonation(ctx context.Context, campaignID, donorID string, amount float64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.campaigns[campaignID]
	if !ok {
		return "", storage.ErrCampaignNotFound
	}
	a, ok := m.accounts[donorID]
	if !ok {
		return "", storage.ErrUserNotFound
	}
	c.Raised += amount
	m.campaigns[campaignID] = c
	a.user.Counters.DonationCount++
	a.user.Counters.TotalDonated += amount
	m.donations++
	return strconv.Itoa(m.donations), nil
}

// Campaign returns a stored campaign.
func (m *Memory) Campaign(id string) (types.Campaign, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	return c, ok
}

var _ storage.Storage = (*Memory)(nil)
