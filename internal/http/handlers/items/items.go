package items

import (
	"errors"
	"log/slog"
	"net/http"

	badgeService "github.com/princekumarofficial/marketplace-service/internal/badges"
	"github.com/princekumarofficial/marketplace-service/internal/http/middleware"
	"github.com/princekumarofficial/marketplace-service/internal/storage"
	"github.com/princekumarofficial/marketplace-service/internal/types"
	"github.com/princekumarofficial/marketplace-service/internal/utils/response"
)

// PostItem creates a listing
// @Summary Create a listing
// @Description Create a marketplace listing. Image URLs come from upload tickets issued under the same item id.
// @Tags items
// @Accept json
// @Produce json
// @Param item body types.ItemPostRequest true "Listing"
// @Success 201 {object} types.MutationResponse "Listing created with newly unlocked badges"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 409 {object} response.Response "Item id already exists"
// @Failure 429 {object} response.Response "Rate limit exceeded"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /items [post]
func PostItem(store storage.Storage, refresher badgeService.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		var item types.ItemPostRequest
		if !response.DecodeValid(w, r, &item) {
			return
		}

		itemID, err := store.CreateItem(r.Context(), userID, item)
		if errors.Is(err, storage.ErrUserNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
			return
		}
		if errors.Is(err, storage.ErrItemExists) {
			response.WriteJSON(w, http.StatusConflict, response.GeneralError(err))
			return
		}
		if err != nil {
			slog.Error("Failed to create item", slog.String("error", err.Error()), slog.String("user_id", userID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to create item")))
			return
		}
		slog.Info("Item created", slog.String("item_id", itemID), slog.Int("images", len(item.ImageURLs)))

		response.WriteJSON(w, http.StatusCreated, types.MutationResponse{
			ID:        itemID,
			NewBadges: badgeService.NewlyUnlocked(r.Context(), refresher, userID),
		})
	}
}

// ShareItem records that the caller shared a listing
// @Summary Share a listing
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} types.MutationResponse "Share recorded with newly unlocked badges"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "Item not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /items/{id}/share [post]
func ShareItem(store storage.Storage, refresher badgeService.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		itemID := r.PathValue("id")
		if itemID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("item id is required")))
			return
		}

		err := store.ShareItem(r.Context(), itemID, userID)
		if errors.Is(err, storage.ErrItemNotFound) || errors.Is(err, storage.ErrUserNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
			return
		}
		if err != nil {
			slog.Error("Failed to share item", slog.String("error", err.Error()), slog.String("item_id", itemID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to share item")))
			return
		}

		response.WriteJSON(w, http.StatusOK, types.MutationResponse{
			ID:        itemID,
			NewBadges: badgeService.NewlyUnlocked(r.Context(), refresher, userID),
		})
	}
}
