package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PatientProfile holds the pregnancy details of a patient user. It is created
// at signup with ProfileCompleted=false and filled in by the profile wizard.
type PatientProfile struct {
	UserID            string             `gorm:"primaryKey;type:varchar(36)" json:"userId"`
	DueDate           string             `gorm:"size:10" json:"dueDate"`
	CurrentWeek       int                `json:"currentWeek"`
	BloodType         string             `gorm:"size:8" json:"bloodType,omitempty"`
	Allergies         string             `gorm:"type:text" json:"allergies,omitempty"`
	Medications       string             `gorm:"type:text" json:"medications,omitempty"`
	DoctorID          string             `gorm:"size:36;index" json:"doctorId"`
	DoctorName        string             `gorm:"size:200" json:"doctorName"`
	HospitalName      string             `gorm:"size:200" json:"hospitalName,omitempty"`
	ProfileCompleted  bool               `gorm:"default:false" json:"profileCompleted"`
	EmergencyContacts []EmergencyContact `gorm:"foreignKey:PatientID;references:UserID" json:"emergencyContacts"`
	HealthRecords     []HealthRecord     `gorm:"foreignKey:PatientID;references:UserID" json:"healthRecords,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// EmergencyContact is one entry of a patient's ordered contact list.
type EmergencyContact struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PatientID    string `gorm:"size:36;index" json:"-"`
	Position     int    `json:"-"`
	Name         string `gorm:"size:200;not null" json:"name"`
	Phone        string `gorm:"size:40;not null" json:"phone"`
	Relationship string `gorm:"size:40;not null" json:"relationship"`
}

// BeforeCreate assigns an id to contacts created without one.
func (c *EmergencyContact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// DoctorProfile holds the professional details of a doctor user.
type DoctorProfile struct {
	UserID         string    `gorm:"primaryKey;type:varchar(36)" json:"userId"`
	Specialization string    `gorm:"size:200" json:"specialization"`
	License        string    `gorm:"size:100" json:"license"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
