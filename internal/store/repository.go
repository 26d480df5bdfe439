package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"maternity-care-server/internal/models"
	"maternity-care-server/internal/utils"
)

// UserRepository covers accounts and the profiles hanging off them.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	EnsureUser(ctx context.Context, user *models.User) (bool, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListPatientsByDoctor(ctx context.Context, doctorID string) ([]models.User, error)
	SavePatientProfile(ctx context.Context, profile *models.PatientProfile) error
	UpdateAvatar(ctx context.Context, userID, avatar string) error
}

// RecordRepository is the append-only health record log.
type RecordRepository interface {
	AppendRecord(ctx context.Context, rec *models.HealthRecord, notif *models.DoctorNotification) error
	ListRecords(ctx context.Context, patientID string) ([]models.HealthRecord, error)
	ListRecordsByPatients(ctx context.Context, patientIDs []string) (map[string][]models.HealthRecord, error)
}

// NotificationRepository reads and acknowledges doctor notifications.
type NotificationRepository interface {
	ListNotifications(ctx context.Context, doctorID string, limit int) ([]models.DoctorNotification, error)
	CountUnread(ctx context.Context, doctorID string) (int64, error)
	MarkNotificationRead(ctx context.Context, doctorID, id string) (*models.DoctorNotification, error)
}

// TokenRepository tracks issued refresh tokens.
type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindActiveRefreshToken(ctx context.Context, token, userID string, now time.Time) (*models.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, old, next *models.RefreshToken) error
	RevokeRefreshToken(ctx context.Context, token string, now time.Time) (bool, error)
}

// AvatarRepository keeps profile photos in the database.
type AvatarRepository interface {
	PutAvatar(ctx context.Context, blob *models.AvatarBlob) error
	GetAvatar(ctx context.Context, userID string) (*models.AvatarBlob, error)
}

// Repository is everything the server persists.
type Repository interface {
	UserRepository
	RecordRepository
	NotificationRepository
	TokenRepository
	AvatarRepository
}

// GormStore implements Repository on top of a gorm connection.
type GormStore struct {
	db *gorm.DB
}

var _ Repository = (*GormStore)(nil)

// New wraps an open connection.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying connection for health checks.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// translate maps gorm sentinel errors onto the service-level ones.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %w", what, utils.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", what, utils.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
