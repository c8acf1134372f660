package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/princekumarofficial/marketplace-service/internal/config"
	mediaTypes "github.com/princekumarofficial/marketplace-service/internal/types/media"
	"github.com/princekumarofficial/marketplace-service/internal/utils/mimetype"
)

// Header names signed into every upload URL.
const (
	HeaderContentType = "Content-Type"
	HeaderSSE         = "X-Amz-Server-Side-Encryption"
	SSEAlgorithm      = "AES256"
)

var (
	ErrInvalidRequest = errors.New("invalid upload ticket request")
	ErrMissingBucket  = errors.New("storage bucket is not configured")
)

type Service struct {
	client   *minio.Client
	storage  config.Storage
	media    config.Media
	validate *validator.Validate
}

// NewService creates the upload ticket issuer. Presigning happens locally, so
// no network call is made here.
func NewService(storageCfg config.Storage, mediaCfg config.Media) (*Service, error) {
	client, err := minio.New(storageCfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(storageCfg.AccessKeyID, storageCfg.SecretAccessKey, ""),
		Secure: storageCfg.UseSSL,
		Region: storageCfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	if storageCfg.UploadURLTTL <= 0 {
		storageCfg.UploadURLTTL = 60 * time.Second
	}
	if storageCfg.DefaultPrefix == "" {
		storageCfg.DefaultPrefix = "items"
	}
	if storageCfg.NGOPrefix == "" {
		storageCfg.NGOPrefix = "items/ngocampaign"
	}
	if mediaCfg.DefaultMimeType == "" {
		mediaCfg.DefaultMimeType = mimetype.Default
	}

	return &Service{
		client:   client,
		storage:  storageCfg,
		media:    mediaCfg,
		validate: validator.New(),
	}, nil
}

// EnsureBucket checks that the configured bucket exists
func (s *Service) EnsureBucket(ctx context.Context) error {
	if s.storage.BucketName == "" {
		return ErrMissingBucket
	}

	exists, err := s.client.BucketExists(ctx, s.storage.BucketName)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.storage.BucketName)
	}

	return nil
}

// ContentType returns fileType when it is on the allow-list and the
// configured default otherwise.
func (s *Service) ContentType(fileType string) string {
	for _, allowed := range s.media.AllowedMimeTypes {
		if fileType == allowed {
			return fileType
		}
	}
	return s.media.DefaultMimeType
}

// ObjectKey derives the storage key for one upload:
// {prefix}/{ownerID}/{assetID}/{fileName}, where ngo uploads use the NGO prefix.
func (s *Service) ObjectKey(kind mediaTypes.AssetKind, ownerID, assetID, fileName string) string {
	prefix := s.storage.DefaultPrefix
	if kind == mediaTypes.KindNGO {
		prefix = s.storage.NGOPrefix
	}
	return fmt.Sprintf("%s/%s/%s/%s", prefix, ownerID, assetID, fileName)
}

// IssueTicket presigns a PUT for the derived key. Content-Type and
// server-side encryption are part of the signature, so the client must send both.
func (s *Service) IssueTicket(ctx context.Context, req mediaTypes.TicketRequest) (*mediaTypes.UploadTicket, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	for _, segment := range []string{req.UserID, req.ItemID, req.FileName} {
		if strings.Contains(segment, "/") || segment == "." || segment == ".." {
			return nil, fmt.Errorf("%w: path separators are not allowed in %q", ErrInvalidRequest, segment)
		}
	}

	if s.storage.BucketName == "" {
		return nil, ErrMissingBucket
	}

	key := s.ObjectKey(req.Type, req.UserID, req.ItemID, req.FileName)

	contentType := s.ContentType(req.FileType)

	headers := http.Header{}
	headers.Set(HeaderContentType, contentType)
	headers.Set(HeaderSSE, SSEAlgorithm)

	uploadURL, err := s.client.PresignHeader(ctx, http.MethodPut, s.storage.BucketName, key,
		s.storage.UploadURLTTL, nil, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &mediaTypes.UploadTicket{
		UploadURL:   uploadURL.String(),
		PublicURL:   s.PublicURL(key),
		ContentType: contentType,
	}, nil
}

// PublicURL returns the stable read URL for objectKey.
func (s *Service) PublicURL(objectKey string) string {
	segments := strings.Split(objectKey, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	escaped := strings.Join(segments, "/")

	if s.storage.PublicBaseURL != "" {
		return strings.TrimRight(s.storage.PublicBaseURL, "/") + "/" + escaped
	}

	scheme := "http"
	if s.storage.UseSSL {
		scheme = "https"
	}

	endpoint := strings.TrimPrefix(s.client.EndpointURL().String(), scheme+"://")
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, s.storage.BucketName, escaped)
}
