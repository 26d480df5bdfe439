package store

import (
	"context"

	"maternity-care-server/internal/models"
)

// ListNotifications returns a doctor's notifications, newest first. A
// non-positive limit returns all of them.
func (s *GormStore) ListNotifications(ctx context.Context, doctorID string, limit int) ([]models.DoctorNotification, error) {
	q := s.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("notified_at DESC").
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var notifications []models.DoctorNotification
	if err := q.Find(&notifications).Error; err != nil {
		return nil, translate(err, "notifications")
	}
	return notifications, nil
}

// CountUnread counts a doctor's unread notifications.
func (s *GormStore) CountUnread(ctx context.Context, doctorID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.DoctorNotification{}).
		Where("doctor_id = ? AND is_read = ?", doctorID, false).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, "notifications")
	}
	return count, nil
}

// MarkNotificationRead flags one of the doctor's notifications as read.
// Notifications of other doctors are reported as not found.
func (s *GormStore) MarkNotificationRead(ctx context.Context, doctorID, id string) (*models.DoctorNotification, error) {
	var n models.DoctorNotification
	db := s.db.WithContext(ctx)
	if err := db.First(&n, "id = ? AND doctor_id = ?", id, doctorID).Error; err != nil {
		return nil, translate(err, "notification")
	}
	if n.Read {
		return &n, nil
	}
	if err := db.Model(&n).Update("is_read", true).Error; err != nil {
		return nil, translate(err, "notification")
	}
	n.Read = true
	return &n, nil
}
