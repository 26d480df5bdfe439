package records

import (
	"math"

	"maternity-care-server/internal/models"
)

// BloodPressureAverage holds per-field means rounded to whole numbers.
type BloodPressureAverage struct {
	Systolic  int `json:"systolic"`
	Diastolic int `json:"diastolic"`
	HeartRate int `json:"heartRate"`
}

// BabyMovementAverage holds the mean kick count and session length in minutes.
type BabyMovementAverage struct {
	Count    int `json:"count"`
	Duration int `json:"duration"`
}

// roundHalfUp rounds to the nearest integer with .5 going up.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// AverageBloodPressure averages the blood_pressure records in records.
// Records of other types are ignored. ok is false when there are none.
func AverageBloodPressure(records []models.HealthRecord) (BloodPressureAverage, bool) {
	var sys, dia, hr float64
	n := 0
	for _, r := range records {
		bp, isBP := r.Payload.(models.BloodPressure)
		if !isBP {
			continue
		}
		sys += float64(bp.Systolic)
		dia += float64(bp.Diastolic)
		hr += float64(bp.HeartRate)
		n++
	}
	if n == 0 {
		return BloodPressureAverage{}, false
	}
	return BloodPressureAverage{
		Systolic:  roundHalfUp(sys / float64(n)),
		Diastolic: roundHalfUp(dia / float64(n)),
		HeartRate: roundHalfUp(hr / float64(n)),
	}, true
}

// AverageSugarLevel is the unrounded mean level across every test type.
func AverageSugarLevel(records []models.HealthRecord) (float64, bool) {
	var sum float64
	n := 0
	for _, r := range records {
		sl, isSugar := r.Payload.(models.SugarLevel)
		if !isSugar {
			continue
		}
		sum += sl.Level
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// AverageBabyMovement averages kick counts and durations.
func AverageBabyMovement(records []models.HealthRecord) (BabyMovementAverage, bool) {
	var count, duration float64
	n := 0
	for _, r := range records {
		bm, isMovement := r.Payload.(models.BabyMovement)
		if !isMovement {
			continue
		}
		count += float64(bm.Count)
		duration += float64(bm.Duration)
		n++
	}
	if n == 0 {
		return BabyMovementAverage{}, false
	}
	return BabyMovementAverage{
		Count:    roundHalfUp(count / float64(n)),
		Duration: roundHalfUp(duration / float64(n)),
	}, true
}

// Summary is the derived view behind the patient dashboard.
type Summary struct {
	Latest               map[models.RecordType]models.HealthRecord `json:"latest"`
	AverageBloodPressure *BloodPressureAverage                     `json:"averageBloodPressure,omitempty"`
	AverageSugarLevel    *float64                                  `json:"averageSugarLevel,omitempty"`
	AverageBabyMovement  *BabyMovementAverage                      `json:"averageBabyMovement,omitempty"`
	Status               Status                                    `json:"status"`
	RecordCount          int                                       `json:"recordCount"`
}

// Summarize computes the latest record of each type, the three averages and
// the patient status.
func Summarize(records []models.HealthRecord) Summary {
	s := Summary{
		Latest:      make(map[models.RecordType]models.HealthRecord),
		Status:      PatientStatus(records),
		RecordCount: len(records),
	}
	for _, t := range models.RecordTypes {
		if r, ok := Latest(records, t); ok {
			s.Latest[t] = r
		}
	}
	if bp, ok := AverageBloodPressure(records); ok {
		s.AverageBloodPressure = &bp
	}
	if sugar, ok := AverageSugarLevel(records); ok {
		s.AverageSugarLevel = &sugar
	}
	if bm, ok := AverageBabyMovement(records); ok {
		s.AverageBabyMovement = &bm
	}
	return s
}
