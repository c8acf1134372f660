package media

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/princekumarofficial/marketplace-service/internal/config"
	mediaService "github.com/princekumarofficial/marketplace-service/internal/services/media"
	mediaTypes "github.com/princekumarofficial/marketplace-service/internal/types/media"
)

type fakeRecorder struct {
	issued []string
	failed []string
}

func (r *fakeRecorder) TicketIssued(kind string)   { r.issued = append(r.issued, kind) }
func (r *fakeRecorder) TicketFailed(reason string) { r.failed = append(r.failed, reason) }

type brokenIssuer struct{}

func (brokenIssuer) IssueTicket(ctx context.Context, req mediaTypes.TicketRequest) (*mediaTypes.UploadTicket, error) {
	return nil, errors.New("signer exploded")
}

func newService(t *testing.T, bucket string) *mediaService.Service {
	t.Helper()
	svc, err := mediaService.NewService(config.Storage{
		Endpoint:        "localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "test-access",
		SecretAccessKey: "test-secret",
		BucketName:      bucket,
	}, config.Media{AllowedMimeTypes: []string{"image/png", "image/jpeg"}})
	if err != nil {
		t.Fatalf("Failed to create media service: %v", err)
	}
	return svc
}

func get(h http.HandlerFunc, query url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/get-presigned-url?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func validQuery() url.Values {
	return url.Values{
		"fileName": {"cover.jpg"},
		"fileType": {"image/jpeg"},
		"userId":   {"u1"},
		"itemId":   {"c9"},
		"type":     {"ngo"},
	}
}

func TestGetPresignedURL(t *testing.T) {
	recorder := &fakeRecorder{}
	h := NewMediaHandlers(newService(t, "uploads"), recorder).GetPresignedURL()

	rec := get(h, validQuery())
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var ticket mediaTypes.UploadTicket
	if err := json.NewDecoder(rec.Body).Decode(&ticket); err != nil {
		t.Fatalf("Failed to decode ticket: %v", err)
	}
	if ticket.PublicURL != "http://localhost:9000/uploads/items/ngocampaign/u1/c9/cover.jpg" {
		t.Fatalf("Unexpected public URL: %s", ticket.PublicURL)
	}
	if ticket.UploadURL == "" || ticket.ContentType != "image/jpeg" {
		t.Fatalf("Unexpected ticket: %+v", ticket)
	}
	if len(recorder.issued) != 1 || recorder.issued[0] != "ngo" {
		t.Fatalf("Expected one ngo ticket recorded, got %v", recorder.issued)
	}
}

func TestGetPresignedURL_MissingParams(t *testing.T) {
	for _, param := range []string{"fileName", "fileType", "userId", "itemId"} {
		t.Run(param, func(t *testing.T) {
			recorder := &fakeRecorder{}
			h := NewMediaHandlers(newService(t, "uploads"), recorder).GetPresignedURL()

			q := validQuery()
			q.Del(param)
			if rec := get(h, q); rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400 without %s, got %d", param, rec.Code)
			}
			if len(recorder.failed) != 1 || recorder.failed[0] != ReasonInvalidRequest {
				t.Fatalf("Expected invalid_request failure, got %v", recorder.failed)
			}
		})
	}
}

func TestGetPresignedURL_MissingBucket(t *testing.T) {
	recorder := &fakeRecorder{}
	h := NewMediaHandlers(newService(t, ""), recorder).GetPresignedURL()

	if rec := get(h, validQuery()); rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	if len(recorder.failed) != 1 || recorder.failed[0] != ReasonMissingBucket {
		t.Fatalf("Expected missing_bucket failure, got %v", recorder.failed)
	}
}

func TestGetPresignedURL_IssuerError(t *testing.T) {
	h := NewMediaHandlers(brokenIssuer{}, nil).GetPresignedURL()

	if rec := get(h, validQuery()); rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
}

func TestKindLabel(t *testing.T) {
	if kindLabel("weird") != "" {
		t.Fatal("Expected unknown kinds to collapse to the default label")
	}
	if kindLabel(mediaTypes.KindProfile) != "profile" {
		t.Fatal("Expected profile label")
	}
}
