// Package upload drives direct-to-storage uploads: it requests a ticket from
// the backend, PUTs the bytes to the presigned URL and hands back the public URL.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/princekumarofficial/marketplace-service/internal/types/media"
	"github.com/princekumarofficial/marketplace-service/internal/utils/mimetype"
)

const (
	maxTicketBody  = 64 << 10
	defaultTimeout = 2 * time.Minute
)

// LocalFile is one file picked on the device.
type LocalFile struct {
	Data             []byte
	FileName         string
	DeclaredMimeType string
}

// MimeType is the Content-Type the file will be uploaded with.
func (f LocalFile) MimeType() string {
	return mimetype.Resolve(f.FileName, f.DeclaredMimeType)
}

type Uploader struct {
	ticketURL *url.URL
	client    *http.Client
	kind      media.AssetKind
}

type Option func(*Uploader)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(u *Uploader) {
		if c != nil {
			u.client = c
		}
	}
}

// WithKind sets the asset kind used by UploadAsset and UploadAll.
func WithKind(kind media.AssetKind) Option {
	return func(u *Uploader) {
		u.kind = kind
	}
}

// New returns an Uploader that requests tickets from ticketEndpoint,
// e.g. https://api.example.com/get-presigned-url.
func New(ticketEndpoint string, opts ...Option) (*Uploader, error) {
	ticketURL, err := url.Parse(ticketEndpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket endpoint: %w", err)
	}
	if ticketURL.Scheme == "" || ticketURL.Host == "" {
		return nil, fmt.Errorf("invalid ticket endpoint: %q is not absolute", ticketEndpoint)
	}

	u := &Uploader{
		ticketURL: ticketURL,
		client:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(u)
	}

	return u, nil
}

// UploadAsset runs ticket -> PUT for one file and returns its public URL.
// Storing the URL on the owning record is left to the caller.
func (u *Uploader) UploadAsset(ctx context.Context, file LocalFile, ownerID, assetID string) (string, error) {
	return u.upload(ctx, u.kind, file, ownerID, assetID)
}

// UploadAll uploads files one at a time under the same asset id and returns
// their public URLs in input order. The first failure stops the batch.
func (u *Uploader) UploadAll(ctx context.Context, files []LocalFile, ownerID, assetID string) ([]string, error) {
	return u.uploadAll(ctx, u.kind, files, ownerID, assetID)
}

func (u *Uploader) uploadAll(ctx context.Context, kind media.AssetKind, files []LocalFile, ownerID, assetID string) ([]string, error) {
	urls := make([]string, 0, len(files))

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return urls, &BatchError{Index: i, Uploaded: urls, Err: err}
		}

		publicURL, err := u.upload(ctx, kind, file, ownerID, assetID)
		if err != nil {
			return urls, &BatchError{Index: i, Uploaded: urls, Err: err}
		}
		urls = append(urls, publicURL)
	}

	return urls, nil
}

func (u *Uploader) upload(ctx context.Context, kind media.AssetKind, file LocalFile, ownerID, assetID string) (string, error) {
	mimeType := file.MimeType()

	ticket, err := u.requestTicket(ctx, kind, file.FileName, mimeType, ownerID, assetID)
	if err != nil {
		slog.Error("Upload ticket request failed",
			slog.String("file_name", file.FileName),
			slog.String("owner_id", ownerID),
			slog.String("asset_id", assetID),
			slog.String("error", err.Error()))
		return "", err
	}

	// The server may have replaced a type it does not accept; the PUT must
	// match what was signed.
	if ticket.ContentType != "" {
		mimeType = ticket.ContentType
	}

	if err := u.putBlob(ctx, ticket.UploadURL, file, mimeType); err != nil {
		slog.Error("Blob upload failed",
			slog.String("file_name", file.FileName),
			slog.String("owner_id", ownerID),
			slog.String("asset_id", assetID),
			slog.String("error", err.Error()))
		return "", err
	}

	return ticket.PublicURL, nil
}

func (u *Uploader) requestTicket(ctx context.Context, kind media.AssetKind, fileName, mimeType, ownerID, assetID string) (*media.UploadTicket, error) {
	fail := func(status int, err error) error {
		return &Error{Step: StepTicket, FileName: fileName, StatusCode: status, Err: err}
	}

	q := u.ticketURL.Query()
	q.Set("fileName", fileName)
	q.Set("fileType", mimeType)
	q.Set("userId", ownerID)
	q.Set("itemId", assetID)
	if kind != media.KindDefault {
		q.Set("type", string(kind))
	}

	endpoint := *u.ticketURL
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fail(0, err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxTicketBody))
		return nil, fail(resp.StatusCode, nil)
	}

	var ticket media.UploadTicket
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTicketBody)).Decode(&ticket); err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("malformed ticket: %w", err))
	}
	if ticket.UploadURL == "" || ticket.PublicURL == "" {
		return nil, fail(resp.StatusCode, fmt.Errorf("malformed ticket: missing uploadUrl or publicUrl"))
	}

	return &ticket, nil
}

func (u *Uploader) putBlob(ctx context.Context, uploadURL string, file LocalFile, mimeType string) error {
	fail := func(status int, err error) error {
		return &Error{Step: StepUpload, FileName: file.FileName, StatusCode: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(file.Data))
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("x-amz-server-side-encryption", "AES256")

	resp, err := u.client.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxTicketBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, nil)
	}

	return nil
}
