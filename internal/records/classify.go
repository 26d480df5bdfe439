package records

import "maternity-care-server/internal/models"

// Status is the traffic-light label shown for a patient.
type Status string

const (
	StatusNormal    Status = "normal"
	StatusAttention Status = "attention"
	StatusCritical  Status = "critical"
)

// Blood pressure thresholds in mmHg. A reading is over a threshold when it
// is strictly greater than it.
const (
	criticalSystolic   = 140
	criticalDiastolic  = 90
	attentionSystolic  = 130
	attentionDiastolic = 85
)

// Classify labels the latest blood pressure reading. A nil reading means no
// data and is treated as needing attention.
func Classify(latest *models.BloodPressure) Status {
	switch {
	case latest == nil:
		return StatusAttention
	case latest.Systolic > criticalSystolic || latest.Diastolic > criticalDiastolic:
		return StatusCritical
	case latest.Systolic > attentionSystolic || latest.Diastolic > attentionDiastolic:
		return StatusAttention
	default:
		return StatusNormal
	}
}

// PatientStatus applies the dashboard rule to a patient's full record set: a
// patient with no records needs attention, one with records but no blood
// pressure reading is normal, otherwise the latest reading decides.
func PatientStatus(records []models.HealthRecord) Status {
	if len(records) == 0 {
		return StatusAttention
	}
	latest, ok := Latest(records, models.RecordTypeBloodPressure)
	if !ok {
		return StatusNormal
	}
	bp, ok := latest.BloodPressure()
	if !ok {
		return StatusNormal
	}
	return Classify(&bp)
}

// NotificationType maps a status onto the urgency of a doctor notification.
func (s Status) NotificationType() models.NotificationType {
	switch s {
	case StatusCritical:
		return models.NotificationUrgent
	case StatusAttention:
		return models.NotificationWarning
	default:
		return models.NotificationInfo
	}
}
