package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"maternity-care-server/internal/models"
)

const maxAppendAttempts = 3

// AppendRecord assigns the next per-patient sequence number and inserts the
// record and, when given, the doctor notification in one transaction.
func (s *GormStore) AppendRecord(ctx context.Context, rec *models.HealthRecord, notif *models.DoctorNotification) error {
	var err error
	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var last int64
			if err := tx.Model(&models.HealthRecord{}).
				Where("patient_id = ?", rec.PatientID).
				Select("COALESCE(MAX(sequence), 0)").
				Scan(&last).Error; err != nil {
				return err
			}
			rec.Sequence = last + 1
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
			if notif == nil {
				return nil
			}
			notif.HealthRecordID = rec.ID
			return tx.Create(notif).Error
		})
		// A concurrent writer took the same sequence number; read it again.
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	return translate(err, "health record")
}

// ListRecords returns a patient's records in insertion order.
func (s *GormStore) ListRecords(ctx context.Context, patientID string) ([]models.HealthRecord, error) {
	var records []models.HealthRecord
	err := s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("sequence ASC").
		Find(&records).Error
	if err != nil {
		return nil, translate(err, "health records")
	}
	return records, nil
}

// ListRecordsByPatients returns the records of several patients keyed by
// patient id, each slice in insertion order.
func (s *GormStore) ListRecordsByPatients(ctx context.Context, patientIDs []string) (map[string][]models.HealthRecord, error) {
	out := make(map[string][]models.HealthRecord, len(patientIDs))
	if len(patientIDs) == 0 {
		return out, nil
	}
	var records []models.HealthRecord
	err := s.db.WithContext(ctx).
		Where("patient_id IN ?", patientIDs).
		Order("patient_id ASC, sequence ASC").
		Find(&records).Error
	if err != nil {
		return nil, translate(err, "health records")
	}
	for _, r := range records {
		out[r.PatientID] = append(out[r.PatientID], r)
	}
	return out, nil
}
