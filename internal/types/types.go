package types

import "github.com/princekumarofficial/marketplace-service/internal/types/badges"

type Item struct {
	ID          string   `json:"id"`
	SellerID    string   `json:"seller_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	ImageURLs   []string `json:"image_urls"`
	CreatedAt   string   `json:"created_at"`
}

// ItemPostRequest carries image URLs already uploaded under ID.
type ItemPostRequest struct {
	ID          string   `json:"id" validate:"omitempty,uuid"`
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description"`
	Price       float64  `json:"price" validate:"gte=0"`
	ImageURLs   []string `json:"image_urls" validate:"dive,url"`
}

type Campaign struct {
	ID          string   `json:"id"`
	NGOID       string   `json:"ngo_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Goal        float64  `json:"goal"`
	Raised      float64  `json:"raised"`
	ImageURLs   []string `json:"image_urls"`
	CreatedAt   string   `json:"created_at"`
}

type CampaignPostRequest struct {
	ID          string   `json:"id" validate:"omitempty,uuid"`
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description"`
	Goal        float64  `json:"goal" validate:"gt=0"`
	ImageURLs   []string `json:"image_urls" validate:"dive,url"`
}

type DonationRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// MutationResponse is returned by endpoints that may unlock badges.
type MutationResponse struct {
	ID        string            `json:"id"`
	NewBadges []badges.BadgeKey `json:"new_badges"`
}
