package store

import (
	"context"

	"gorm.io/gorm/clause"

	"maternity-care-server/internal/models"
)

// PutAvatar inserts or replaces the stored photo of blob.UserID.
func (s *GormStore) PutAvatar(ctx context.Context, blob *models.AvatarBlob) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content_type", "data", "updated_at"}),
	}).Create(blob).Error
	return translate(err, "avatar")
}

// GetAvatar loads the stored photo of a user.
func (s *GormStore) GetAvatar(ctx context.Context, userID string) (*models.AvatarBlob, error) {
	var blob models.AvatarBlob
	if err := s.db.WithContext(ctx).First(&blob, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err, "avatar")
	}
	return &blob, nil
}
