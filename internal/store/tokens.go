package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"maternity-care-server/internal/models"
)

// CreateRefreshToken records a newly issued refresh token.
func (s *GormStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return translate(s.db.WithContext(ctx).Create(token).Error, "refresh token")
}

// FindActiveRefreshToken returns the token if it belongs to userID, is not
// revoked and has not expired at now.
func (s *GormStore) FindActiveRefreshToken(ctx context.Context, token, userID string, now time.Time) (*models.RefreshToken, error) {
	var stored models.RefreshToken
	err := s.db.WithContext(ctx).
		Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?", token, userID, false, now).
		First(&stored).Error
	if err != nil {
		return nil, translate(err, "refresh token")
	}
	if !stored.Active(now) {
		return nil, translate(gorm.ErrRecordNotFound, "refresh token")
	}
	return &stored, nil
}

// RotateRefreshToken revokes old and stores next atomically. A token that
// was revoked concurrently is reported as not found.
func (s *GormStore) RotateRefreshToken(ctx context.Context, old, next *models.RefreshToken) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := Now()
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND is_revoked = ?", old.ID, false).
			Updates(map[string]interface{}{"is_revoked": true, "revoked_at": now})
		if res.Error != nil {
			return translate(res.Error, "refresh token")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "refresh token")
		}
		old.Revoke(now)
		return translate(tx.Create(next).Error, "refresh token")
	})
}

// RevokeRefreshToken revokes and expires an active token. It reports false
// when the token was unknown or already revoked.
func (s *GormStore) RevokeRefreshToken(ctx context.Context, token string, now time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token = ? AND is_revoked = ?", token, false).
		Updates(map[string]interface{}{"is_revoked": true, "revoked_at": now, "expires_at": now})
	if res.Error != nil {
		return false, translate(res.Error, "refresh token")
	}
	return res.RowsAffected > 0, nil
}
