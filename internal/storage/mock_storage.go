package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"rental-mngt-admin/internal/logger"
)

// MockStorageService implements agreement storage using local filesystem
// This is for demo/testing without S3
type MockStorageService struct {
	baseURL  string // Server URL (e.g., "http://localhost:8080")
	filesDir string // Local directory for archived files
	now      func() time.Time
}

// NewMockStorageService creates a new mock storage service
func NewMockStorageService(baseURL, uploadsDir string) (*MockStorageService, error) {
	filesDir := filepath.Join(uploadsDir, "files")

	// Create directories if they don't exist
	if err := os.MkdirAll(filesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create files directory: %w", err)
	}

	return &MockStorageService{
		baseURL:  strings.TrimRight(baseURL, "/"),
		filesDir: filesDir,
		now:      time.Now,
	}, nil
}

// PutFile writes data to the local filesystem
func (m *MockStorageService) PutFile(ctx context.Context, key string, contentType string, data []byte) error {
	return m.SaveFile(key, bytes.NewReader(data))
}

// GeneratePresignedDownloadURL generates a mock download URL served by RegisterMockStorageRoutes
func (m *MockStorageService) GeneratePresignedDownloadURL(
	ctx context.Context,
	key string,
	expiresIn time.Duration,
) (string, error) {
	expires := m.now().Add(expiresIn).Unix()
	token := encodeKey(key, expires)

	query := url.Values{}
	query.Set("key", key)
	query.Set("expires", strconv.FormatInt(expires, 10))
	return fmt.Sprintf("%s/api/v1/download/%s?%s", m.baseURL, token, query.Encode()), nil
}

// VerifyDownload checks a token produced by GeneratePresignedDownloadURL
func (m *MockStorageService) VerifyDownload(token, key string, expires int64) bool {
	if m.now().Unix() > expires {
		return false
	}
	return token == encodeKey(key, expires)
}

// FileExists checks if file exists in local filesystem
func (m *MockStorageService) FileExists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := m.path(key)
	if err != nil {
		return false, 0, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Mock storage file does not exist", "key", key)
			return false, 0, nil
		}
		return false, 0, err
	}

	return true, info.Size(), nil
}

// DeleteFile deletes file from local filesystem
func (m *MockStorageService) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := m.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// SaveFile saves a file to local filesystem. The write goes through a
// temporary file so readers never see a partial document.
func (m *MockStorageService) SaveFile(key string, reader io.Reader) error {
	fullPath, err := m.path(key)
	if err != nil {
		return err
	}

	// Create parent directories
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	tmpPath := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}

	return os.Rename(tmpPath, fullPath)
}

// ReadFile reads file from local filesystem
func (m *MockStorageService) ReadFile(key string) (io.ReadCloser, error) {
	fullPath, err := m.path(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// path maps a key to a file below filesDir, rejecting keys that escape it.
func (m *MockStorageService) path(key string) (string, error) {
	fullPath := filepath.Join(m.filesDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(m.filesDir, fullPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return fullPath, nil
}

// encodeKey creates a URL-safe hash of the key and its expiry
func encodeKey(key string, expires int64) string {
	hash := sha256.Sum256([]byte(key + "|" + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(hash[:16]) // Use first 16 bytes
}
