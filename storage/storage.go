package storage

import (
	"context"
	"fmt"
	"strings"

	config "github.com/anjiri1684/travel_agency/configs"
)

// ObjectStore keeps generated documents (vouchers) and returns a public URL for them.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// New picks the backend named by STORAGE_DRIVER. With no driver configured it prefers
// Cloudinary, then S3, and returns nil when neither is set up.
func New(cfg *config.AppConfig) (ObjectStore, error) {
	switch strings.ToLower(cfg.StorageDriver) {
	case "cloudinary":
		return cloudinaryStore(cfg)
	case "s3":
		return s3Store(cfg)
	case "":
		if cfg.CloudinaryURL != "" {
			return cloudinaryStore(cfg)
		}
		if cfg.AWSBucket != "" && cfg.AWSRegion != "" {
			return s3Store(cfg)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

func cloudinaryStore(cfg *config.AppConfig) (ObjectStore, error) {
	s, err := NewCloudinaryStore(cfg.CloudinaryURL, "travel_agency")
	if err != nil {
		return nil, err
	}
	return s, nil
}

func s3Store(cfg *config.AppConfig) (ObjectStore, error) {
	s, err := NewS3Store(cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.AWSBucket)
	if err != nil {
		return nil, err
	}
	return s, nil
}
