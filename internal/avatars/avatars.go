// Package avatars stores profile photos either in the database or in an
// S3-compatible bucket.
package avatars

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"maternity-care-server/internal/config"
	"maternity-care-server/internal/models"
	"maternity-care-server/internal/utils"
)

// Store saves a user's photo and returns the URL clients should load it from.
type Store interface {
	Put(ctx context.Context, userID, contentType string, data []byte) (string, error)
}

// Repository is the database persistence used by DBStore.
type Repository interface {
	PutAvatar(ctx context.Context, blob *models.AvatarBlob) error
	GetAvatar(ctx context.Context, userID string) (*models.AvatarBlob, error)
}

// Detect sniffs the content type of an upload and rejects anything that is
// not an image or is larger than maxBytes.
func Detect(data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", utils.NewValidationError("avatar", "is empty")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", utils.NewValidationError("avatar", "must be at most %d bytes", maxBytes)
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", utils.NewValidationError("avatar", "must be an image, got %s", mtype.String())
	}
	return mtype.String(), nil
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.AvatarConfig, repo Repository) (Store, error) {
	switch cfg.Backend {
	case config.AvatarBackendDatabase:
		return NewDBStore(repo), nil
	case config.AvatarBackendS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown avatar backend %q", cfg.Backend)
	}
}

// DBStore keeps photos in the avatar_blobs table and serves them from the API.
type DBStore struct {
	repo Repository
}

// NewDBStore creates a DBStore.
func NewDBStore(repo Repository) *DBStore {
	return &DBStore{repo: repo}
}

// URLFor is the API path a database-backed avatar is served from.
func URLFor(userID string) string {
	return "/api/v1/avatars/" + userID
}

func (s *DBStore) Put(ctx context.Context, userID, contentType string, data []byte) (string, error) {
	blob := &models.AvatarBlob{UserID: userID, ContentType: contentType, Data: data}
	if err := s.repo.PutAvatar(ctx, blob); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	return URLFor(userID), nil
}

// Get loads a stored photo.
func (s *DBStore) Get(ctx context.Context, userID string) (*models.AvatarBlob, error) {
	return s.repo.GetAvatar(ctx, userID)
}
