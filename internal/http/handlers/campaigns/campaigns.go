package campaigns

import (
	"errors"
	"log/slog"
	"net/http"

	badgeService "github.com/princekumarofficial/marketplace-service/internal/badges"
	"github.com/princekumarofficial/marketplace-service/internal/http/middleware"
	"github.com/princekumarofficial/marketplace-service/internal/storage"
	"github.com/princekumarofficial/marketplace-service/internal/types"
	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
	"github.com/princekumarofficial/marketplace-service/internal/types/users"
	"github.com/princekumarofficial/marketplace-service/internal/utils/response"
)

var ErrNotNGO = errors.New("only NGO accounts can create campaigns")

// PostCampaign creates a fundraising campaign
// @Summary Create a campaign
// @Tags campaigns
// @Accept json
// @Produce json
// @Param campaign body types.CampaignPostRequest true "Campaign"
// @Success 201 {object} types.MutationResponse "Campaign created"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 403 {object} response.Response "Caller is not an NGO"
// @Failure 409 {object} response.Response "Campaign id already exists"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /campaigns [post]
func PostCampaign(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		var campaign types.CampaignPostRequest
		if !response.DecodeValid(w, r, &campaign) {
			return
		}

		user, err := store.GetUser(r.Context(), userID)
		if errors.Is(err, storage.ErrUserNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
			return
		}
		if err != nil {
			slog.Error("Failed to get user", slog.String("error", err.Error()), slog.String("user_id", userID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to get user")))
			return
		}
		if user.Role != users.RoleNGO {
			response.WriteJSON(w, http.StatusForbidden, response.GeneralError(ErrNotNGO))
			return
		}

		campaignID, err := store.CreateCampaign(r.Context(), userID, campaign)
		if errors.Is(err, storage.ErrCampaignExists) {
			response.WriteJSON(w, http.StatusConflict, response.GeneralError(err))
			return
		}
		if err != nil {
			slog.Error("Failed to create campaign", slog.String("error", err.Error()), slog.String("ngo_id", userID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to create campaign")))
			return
		}
		slog.Info("Campaign created", slog.String("campaign_id", campaignID), slog.String("ngo_id", userID))

		response.WriteJSON(w, http.StatusCreated, types.MutationResponse{
			ID:        campaignID,
			NewBadges: []badges.BadgeKey{},
		})
	}
}

// Donate records a donation to a campaign
// @Summary Donate to a campaign
// @Tags campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param donation body types.DonationRequest true "Donation"
// @Success 201 {object} types.MutationResponse "Donation recorded with newly unlocked badges"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "Campaign not found"
// @Failure 429 {object} response.Response "Rate limit exceeded"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /campaigns/{id}/donations [post]
func Donate(store storage.Storage, refresher badgeService.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		campaignID := r.PathValue("id")
		if campaignID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("campaign id is required")))
			return
		}

		var donation types.DonationRequest
		if !response.DecodeValid(w, r, &donation) {
			return
		}

		donationID, err := store.RecordDonation(r.Context(), campaignID, userID, donation.Amount)
		if errors.Is(err, storage.ErrCampaignNotFound) || errors.Is(err, storage.ErrUserNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
			return
		}
		if err != nil {
			slog.Error("Failed to record donation", slog.String("error", err.Error()),
				slog.String("campaign_id", campaignID), slog.String("donor_id", userID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to record donation")))
			return
		}

		response.WriteJSON(w, http.StatusCreated, types.MutationResponse{
			ID:        donationID,
			NewBadges: badgeService.NewlyUnlocked(r.Context(), refresher, userID),
		})
	}
}
