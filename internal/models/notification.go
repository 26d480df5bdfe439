package models

import "time"

// NotificationType grades how urgently a doctor should look at an event.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationUrgent  NotificationType = "urgent"
)

// DoctorNotification tells a doctor that one of their patients logged a
// health record.
type DoctorNotification struct {
	BaseModel
	DoctorID       string           `gorm:"size:36;not null;index:idx_doctor_read,priority:1" json:"doctorId"`
	PatientID      string           `gorm:"size:36;not null;index" json:"patientId"`
	PatientName    string           `gorm:"size:200" json:"patientName"`
	HealthRecordID string           `gorm:"size:36" json:"healthRecordId,omitempty"`
	Message        string           `gorm:"size:500;not null" json:"message"`
	Type           NotificationType `gorm:"size:20;not null;default:'info'" json:"type"`
	Timestamp      time.Time        `gorm:"column:notified_at;not null;index" json:"timestamp"`
	Read           bool             `gorm:"column:is_read;not null;default:false;index:idx_doctor_read,priority:2" json:"read"`
}
