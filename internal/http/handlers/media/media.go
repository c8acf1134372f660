package media

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	mediaService "github.com/princekumarofficial/marketplace-service/internal/services/media"
	mediaTypes "github.com/princekumarofficial/marketplace-service/internal/types/media"
	"github.com/princekumarofficial/marketplace-service/internal/utils/response"
)

// Failure reasons reported to the TicketRecorder.
const (
	ReasonInvalidRequest = "invalid_request"
	ReasonMissingBucket  = "missing_bucket"
	ReasonPresign        = "presign"
	ReasonRateLimited    = "rate_limited"
)

type TicketIssuer interface {
	IssueTicket(ctx context.Context, req mediaTypes.TicketRequest) (*mediaTypes.UploadTicket, error)
}

type TicketRecorder interface {
	TicketIssued(kind string)
	TicketFailed(reason string)
}

type MediaHandlers struct {
	issuer   TicketIssuer
	recorder TicketRecorder
}

// NewMediaHandlers creates a new media handlers instance. recorder may be nil.
func NewMediaHandlers(issuer TicketIssuer, recorder TicketRecorder) *MediaHandlers {
	return &MediaHandlers{
		issuer:   issuer,
		recorder: recorder,
	}
}

// GetPresignedURL issues a short-lived upload ticket
// @Summary Issue an upload ticket
// @Description Presign a PUT for one file. The client must send the returned contentType and x-amz-server-side-encryption: AES256.
// @Tags media
// @Produce json
// @Param fileName query string true "File name"
// @Param fileType query string true "MIME type"
// @Param userId query string true "Owner id"
// @Param itemId query string true "Asset id"
// @Param type query string false "profile or ngo"
// @Success 200 {object} mediaTypes.UploadTicket "Upload ticket"
// @Failure 400 {object} response.Response "Missing parameters"
// @Failure 429 {object} response.Response "Rate limit exceeded"
// @Failure 500 {object} response.Response "Storage not configured"
// @Router /get-presigned-url [get]
func (h *MediaHandlers) GetPresignedURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		req := mediaTypes.TicketRequest{
			FileName: q.Get("fileName"),
			FileType: q.Get("fileType"),
			UserID:   q.Get("userId"),
			ItemID:   q.Get("itemId"),
			Type:     mediaTypes.AssetKind(q.Get("type")),
		}

		ticket, err := h.issuer.IssueTicket(r.Context(), req)
		switch {
		case errors.Is(err, mediaService.ErrInvalidRequest):
			h.failed(ReasonInvalidRequest)
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		case errors.Is(err, mediaService.ErrMissingBucket):
			h.failed(ReasonMissingBucket)
			slog.Error("Upload ticket requested without a configured bucket")
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		case err != nil:
			h.failed(ReasonPresign)
			slog.Error("Failed to issue upload ticket",
				slog.String("user_id", req.UserID),
				slog.String("item_id", req.ItemID),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to generate upload URL")))
			return
		}

		if h.recorder != nil {
			h.recorder.TicketIssued(kindLabel(req.Type))
		}

		response.WriteJSON(w, http.StatusOK, ticket)
	}
}

func (h *MediaHandlers) failed(reason string) {
	if h.recorder != nil {
		h.recorder.TicketFailed(reason)
	}
}

// kindLabel bounds the metric label to the known kinds.
func kindLabel(kind mediaTypes.AssetKind) string {
	switch kind {
	case mediaTypes.KindProfile, mediaTypes.KindNGO:
		return string(kind)
	}
	return ""
}
