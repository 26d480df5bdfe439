package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}

// User represents a user in the system
type User struct {
	BaseModel
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Name     string `gorm:"size:200;not null" json:"name"`
	Role     Role   `gorm:"size:20;not null;index" json:"role"`
	Avatar   string `gorm:"size:1024" json:"avatar,omitempty"`

	// Relations (not always preloaded)
	Patient       *PatientProfile `gorm:"foreignKey:UserID" json:"-"`
	Doctor        *DoctorProfile  `gorm:"foreignKey:UserID" json:"-"`
	RefreshTokens []RefreshToken  `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID               string          `json:"id"`
	Email            string          `json:"email"`
	Name             string          `json:"name"`
	Role             Role            `json:"role"`
	Avatar           string          `json:"avatar,omitempty"`
	ProfileCompleted bool            `json:"profileCompleted"`
	Patient          *PatientProfile `json:"patient,omitempty"`
	Doctor           *DoctorProfile  `json:"doctor,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// ProfileCompleted reports whether the user may see the main dashboard.
// Doctors never go through the wizard.
func (u *User) ProfileCompleted() bool {
	if u.Role != RolePatient {
		return true
	}
	return u.Patient != nil && u.Patient.ProfileCompleted
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		Avatar:           u.Avatar,
		ProfileCompleted: u.ProfileCompleted(),
		Patient:          u.Patient,
		Doctor:           u.Doctor,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
