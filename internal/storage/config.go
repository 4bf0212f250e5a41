package storage

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"time"
)

// Config holds storage configuration
type Config struct {
	Type              string // "mock" or "s3"
	MockDir           string // Directory for mock storage
	BaseURL           string // Server base URL for generating mock URLs
	Bucket            string
	Region            string
	Endpoint          string // S3-compatible providers; empty for AWS
	AccessKey         string
	SecretKey         string
	PresignExpiration time.Duration
}

// New builds the backend selected by cfg.Type.
func New(cfg Config) (StorageInterface, error) {
	switch cfg.Type {
	case "", "mock":
		return NewMockStorageService(cfg.BaseURL, cfg.MockDir)
	case "s3":
		return NewS3StorageService(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// ErrInvalidKey is returned when an object key cannot be built safely.
var ErrInvalidKey = errors.New("invalid storage key")

var keySegment = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// AgreementKey is the object key of the signed agreement of a rental.
// Directory parts of filename are dropped; rentalID must be a single plain segment.
func AgreementKey(rentalID, filename string) (string, error) {
	if !keySegment.MatchString(rentalID) {
		return "", fmt.Errorf("%w: rental id %q", ErrInvalidKey, rentalID)
	}
	filename = path.Base(filename)
	if filename == "" || filename == "." || filename == "/" || filename == ".." {
		filename = "rental-agreement.pdf"
	}
	return fmt.Sprintf("agreements/%s/%s", rentalID, filename), nil
}
