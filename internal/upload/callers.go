package upload

import (
	"context"

	"github.com/google/uuid"
	"github.com/princekumarofficial/marketplace-service/internal/types/media"
)

// ProfilePhoto uploads a user's avatar under a fresh asset id.
func (u *Uploader) ProfilePhoto(ctx context.Context, userID string, file LocalFile) (string, error) {
	return u.upload(ctx, media.KindProfile, file, userID, uuid.New().String())
}

// NGOProfilePhoto uploads an NGO's avatar into the NGO folder.
func (u *Uploader) NGOProfilePhoto(ctx context.Context, ngoID string, file LocalFile) (string, error) {
	return u.upload(ctx, media.KindNGO, file, ngoID, uuid.New().String())
}

// ListingImages uploads the photos of one item listing. itemID should be the
// id the listing is then created with.
func (u *Uploader) ListingImages(ctx context.Context, sellerID, itemID string, files []LocalFile) ([]string, error) {
	return u.uploadAll(ctx, media.KindDefault, files, sellerID, itemID)
}

// CampaignImages uploads the photos of one NGO campaign.
func (u *Uploader) CampaignImages(ctx context.Context, ngoID, campaignID string, files []LocalFile) ([]string, error) {
	return u.uploadAll(ctx, media.KindNGO, files, ngoID, campaignID)
}
