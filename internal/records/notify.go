package records

import (
	"fmt"
	"strings"

	"maternity-care-server/internal/models"
)

// StatusOf classifies a single record. Only blood pressure readings carry a
// status; everything else is informational.
func StatusOf(rec models.HealthRecord) Status {
	bp, ok := rec.BloodPressure()
	if !ok {
		return StatusNormal
	}
	return Classify(&bp)
}

// Describe renders a one-line summary of a record for notifications.
func Describe(rec models.HealthRecord) string {
	switch p := rec.Payload.(type) {
	case models.BloodPressure:
		return fmt.Sprintf("blood pressure %d/%d mmHg, heart rate %d bpm", p.Systolic, p.Diastolic, p.HeartRate)
	case models.SugarLevel:
		return fmt.Sprintf("sugar level %.1f mg/dL (%s)", p.Level, strings.ReplaceAll(string(p.TestType), "_", "-"))
	case models.BabyMovement:
		return fmt.Sprintf("baby movement: %d kicks in %d minutes", p.Count, p.Duration)
	case models.WeeklyUpdate:
		msg := fmt.Sprintf("weekly update: weight %.1f kg, mood %d/10", p.Weight, p.Mood)
		if len(p.Symptoms) > 0 {
			msg += ", symptoms: " + strings.Join(p.Symptoms, ", ")
		}
		return msg
	default:
		return string(rec.Type)
	}
}

// NotificationFor builds the doctor notification for a newly added record.
// It returns nil when the patient has no assigned doctor.
func NotificationFor(owner Owner, rec models.HealthRecord) *models.DoctorNotification {
	if owner.DoctorID == "" {
		return nil
	}
	status := StatusOf(rec)
	var msg string
	switch status {
	case StatusCritical:
		msg = "Critical reading: " + Describe(rec)
	case StatusAttention:
		msg = "Needs attention: " + Describe(rec)
	default:
		msg = "Logged " + Describe(rec)
	}
	return &models.DoctorNotification{
		DoctorID:    owner.DoctorID,
		PatientID:   owner.PatientID,
		PatientName: owner.PatientName,
		Message:     msg,
		Type:        status.NotificationType(),
		Timestamp:   rec.Date,
	}
}
