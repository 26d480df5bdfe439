// Package profile validates the three-step onboarding wizard and merges its
// answers into a patient's profile.
package profile

import (
	"strings"

	"github.com/google/uuid"

	"maternity-care-server/internal/models"
	"maternity-care-server/internal/utils"
)

// Steps in the onboarding wizard.
const (
	StepPregnancy = 1
	StepContacts  = 2
	StepMedical   = 3
)

// ContactInput is one emergency contact as entered in the form.
type ContactInput struct {
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Relationship string `json:"relationship" validate:"required"`
}

// Wizard is everything the patient entered across the three steps.
type Wizard struct {
	DueDate           string         `json:"dueDate"`
	CurrentWeek       int            `json:"currentWeek"`
	EmergencyContacts []ContactInput `json:"emergencyContacts"`
	BloodType         string         `json:"bloodType"`
	Allergies         string         `json:"allergies"`
	Medications       string         `json:"medications"`
	DoctorName        string         `json:"doctorName"`
	HospitalName      string         `json:"hospitalName"`
}

type pregnancyStep struct {
	DueDate     string `json:"dueDate" validate:"required,datetime=2006-01-02"`
	CurrentWeek int    `json:"currentWeek" validate:"required,min=1,max=42"`
}

type contactsStep struct {
	EmergencyContacts []ContactInput `json:"emergencyContacts" validate:"min=1,max=3,dive"`
}

func (w Wizard) trimmed() Wizard {
	out := w
	out.DueDate = strings.TrimSpace(w.DueDate)
	out.EmergencyContacts = make([]ContactInput, len(w.EmergencyContacts))
	for i, c := range w.EmergencyContacts {
		out.EmergencyContacts[i] = ContactInput{
			Name:         strings.TrimSpace(c.Name),
			Phone:        strings.TrimSpace(c.Phone),
			Relationship: strings.TrimSpace(c.Relationship),
		}
	}
	out.BloodType = strings.TrimSpace(w.BloodType)
	out.DoctorName = strings.TrimSpace(w.DoctorName)
	out.HospitalName = strings.TrimSpace(w.HospitalName)
	return out
}

// ValidateStep checks the fields owned by one wizard step. The medical step
// is optional and always passes.
func ValidateStep(step int, w Wizard) error {
	w = w.trimmed()
	switch step {
	case StepPregnancy:
		return utils.Validate(pregnancyStep{DueDate: w.DueDate, CurrentWeek: w.CurrentWeek})
	case StepContacts:
		return utils.Validate(contactsStep{EmergencyContacts: w.EmergencyContacts})
	case StepMedical:
		return nil
	default:
		return utils.NewValidationError("step", "must be between %d and %d", StepPregnancy, StepMedical)
	}
}

// CompleteProfile validates every step and merges the wizard into profile.
// On failure profile is returned as given. The doctor assignment is kept; a
// doctor name entered in the wizard only changes the displayed name.
func CompleteProfile(profile models.PatientProfile, w Wizard) (models.PatientProfile, error) {
	for _, step := range []int{StepPregnancy, StepContacts, StepMedical} {
		if err := ValidateStep(step, w); err != nil {
			return profile, err
		}
	}
	w = w.trimmed()

	out := profile
	out.DueDate = w.DueDate
	out.CurrentWeek = w.CurrentWeek
	out.BloodType = w.BloodType
	out.Allergies = w.Allergies
	out.Medications = w.Medications
	out.HospitalName = w.HospitalName
	if w.DoctorName != "" {
		out.DoctorName = w.DoctorName
	}

	out.EmergencyContacts = make([]models.EmergencyContact, len(w.EmergencyContacts))
	for i, c := range w.EmergencyContacts {
		out.EmergencyContacts[i] = models.EmergencyContact{
			ID:           uuid.New().String(),
			PatientID:    profile.UserID,
			Position:     i,
			Name:         c.Name,
			Phone:        c.Phone,
			Relationship: c.Relationship,
		}
	}
	if out.HealthRecords == nil {
		out.HealthRecords = []models.HealthRecord{}
	}
	out.ProfileCompleted = true
	return out, nil
}
