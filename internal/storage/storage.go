package storage

import (
	"context"
	"errors"

	"github.com/princekumarofficial/marketplace-service/internal/types"
	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
	"github.com/princekumarofficial/marketplace-service/internal/types/users"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrItemNotFound     = errors.New("item not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrItemExists       = errors.New("item id already exists")
	ErrCampaignExists   = errors.New("campaign id already exists")
)

type Storage interface {
	CreateUser(ctx context.Context, email, password, name string, role users.Role) (string, error)
	GetUserByEmail(ctx context.Context, email string) (string, string, error)
	GetUser(ctx context.Context, userID string) (users.User, error)
	UpdateProfile(ctx context.Context, userID string, req users.ProfileUpdateRequest) error
	AddBadges(ctx context.Context, userID string, keys []badges.BadgeKey) error
	ListUserIDs(ctx context.Context, afterID string, limit int) ([]string, error)

	CreateItem(ctx context.Context, sellerID string, req types.ItemPostRequest) (string, error)
	ShareItem(ctx context.Context, itemID, userID string) error

	CreateCampaign(ctx context.Context, ngoID string, req types.CampaignPostRequest) (string, error)
	RecordDonation(ctx context.Context, campaignID, donorID string, amount float64) (string, error)
}
