package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"maternity-care-server/internal/models"
	"maternity-care-server/internal/utils"
)

func orderedContacts(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (s *GormStore) withProfiles(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Patient").
		Preload("Patient.EmergencyContacts", orderedContacts).
		Preload("Doctor")
}

// CreateUser inserts the user together with its patient or doctor profile.
// Emails are unique across roles.
func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return translate(err, "user")
		}
		if count > 0 {
			return translate(gorm.ErrDuplicatedKey, "user with this email")
		}
		return translate(tx.Create(user).Error, "user")
	})
}

// EnsureUser creates the user unless one with the same id already exists.
// It reports whether a row was inserted. An email already taken by a
// different account is a conflict.
func (s *GormStore) EnsureUser(ctx context.Context, user *models.User) (bool, error) {
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Select("id").First(&existing, "id = ?", user.ID).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return translate(err, "user")
		}

		var owner models.User
		err = tx.Select("id").Where("email = ?", user.Email).First(&owner).Error
		if err == nil {
			return fmt.Errorf("email %s is already used by user %s: %w", user.Email, owner.ID, utils.ErrConflict)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return translate(err, "user")
		}

		if err := tx.Create(user).Error; err != nil {
			return translate(err, "user")
		}
		created = true
		return nil
	})
	return created, err
}

// GetUser loads a user with its profile and ordered emergency contacts.
func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.withProfiles(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// FindUserByEmail loads a user by login email.
func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.withProfiles(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// ListPatientsByDoctor returns the patients assigned to doctorID in signup order.
func (s *GormStore) ListPatientsByDoctor(ctx context.Context, doctorID string) ([]models.User, error) {
	var users []models.User
	err := s.withProfiles(ctx).
		Joins("JOIN patient_profiles ON patient_profiles.user_id = users.id").
		Where("patient_profiles.doctor_id = ? AND users.role = ?", doctorID, models.RolePatient).
		Order("users.created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, translate(err, "patients")
	}
	return users, nil
}

// SavePatientProfile writes the profile row and replaces its emergency
// contacts in one transaction.
func (s *GormStore) SavePatientProfile(ctx context.Context, profile *models.PatientProfile) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(profile).Error; err != nil {
			return translate(err, "patient profile")
		}
		if err := tx.Where("patient_id = ?", profile.UserID).Delete(&models.EmergencyContact{}).Error; err != nil {
			return translate(err, "emergency contacts")
		}
		if len(profile.EmergencyContacts) == 0 {
			return nil
		}
		for i := range profile.EmergencyContacts {
			profile.EmergencyContacts[i].PatientID = profile.UserID
			profile.EmergencyContacts[i].Position = i
		}
		return translate(tx.Create(&profile.EmergencyContacts).Error, "emergency contacts")
	})
}

// UpdateAvatar stores the avatar URL shown for a user.
func (s *GormStore) UpdateAvatar(ctx context.Context, userID, avatar string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("avatar", avatar)
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "user")
	}
	return nil
}
