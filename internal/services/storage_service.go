// internal/services/storage_service.go
package services

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/nickopusan/caufi-backend/internal/config"
)

// StorageService talks to Cloudflare R2 through its S3-compatible API.
// Checkout and catalog reads only consume stored URLs; the service is used
// to delete image blobs when their product goes away.
type StorageService struct {
	s3Client *s3.S3
	cfg      config.StorageConfig
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.Storage.AccessKeyID == "" {
		// No credentials: return a no-op service for local development.
		return &StorageService{cfg: cfg.Storage}, nil
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.Storage.AccountID)
	sess, err := session.NewSession(&aws.Config{
		// R2 ignores the region but the SDK requires one.
		Region:           aws.String("auto"),
		Endpoint:         aws.String(endpoint),
		S3ForcePathStyle: aws.Bool(true),
		Credentials: credentials.NewStaticCredentials(
			cfg.Storage.AccessKeyID,
			cfg.Storage.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create R2 session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		cfg:      cfg.Storage,
	}, nil
}

// DeleteImage removes the blob behind a stored public URL.
func (s *StorageService) DeleteImage(imageURL string) error {
	key := s.keyFromURL(imageURL)
	if key == "" {
		return fmt.Errorf("cannot derive object key from %q", imageURL)
	}
	return s.DeleteObject(key)
}

func (s *StorageService) DeleteObject(key string) error {
	if s.s3Client == nil {
		// Local development, nothing to delete.
		return nil
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from R2: %w", err)
	}

	return nil
}

// ObjectURL resolves a key to its public URL.
func (s *StorageService) ObjectURL(key string) string {
	base := strings.TrimSuffix(s.cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s", s.cfg.AccountID, s.cfg.Bucket)
	}
	return base + "/" + strings.TrimPrefix(key, "/")
}

func (s *StorageService) keyFromURL(imageURL string) string {
	base := strings.TrimSuffix(s.cfg.PublicBaseURL, "/")
	if base != "" && strings.HasPrefix(imageURL, base+"/") {
		return strings.TrimPrefix(imageURL, base+"/")
	}
	// Fall back to everything after the bucket segment.
	if idx := strings.Index(imageURL, s.cfg.Bucket+"/"); idx >= 0 {
		return imageURL[idx+len(s.cfg.Bucket)+1:]
	}
	return ""
}
