package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maternity-care-server/internal/models"
	"maternity-care-server/internal/utils"
)

func validWizard() Wizard {
	return Wizard{
		DueDate:     "2026-11-20",
		CurrentWeek: 24,
		EmergencyContacts: []ContactInput{
			{Name: "Ravi Sharma", Phone: "+91 98765 43210", Relationship: "husband"},
		},
		BloodType:    "O+",
		Allergies:    "penicillin",
		DoctorName:   "",
		HospitalName: "City Maternity",
	}
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ve *utils.ValidationError
	require.True(t, errors.As(err, &ve), "expected a validation error, got %v", err)
	return ve.Field
}

func TestValidateStep(t *testing.T) {
	tests := []struct {
		name   string
		step   int
		mutate func(*Wizard)
		field  string
	}{
		{"step 1 ok", StepPregnancy, func(*Wizard) {}, ""},
		{"missing due date", StepPregnancy, func(w *Wizard) { w.DueDate = "" }, "dueDate"},
		{"malformed due date", StepPregnancy, func(w *Wizard) { w.DueDate = "20/11/2026" }, "dueDate"},
		{"missing week", StepPregnancy, func(w *Wizard) { w.CurrentWeek = 0 }, "currentWeek"},
		{"week too large", StepPregnancy, func(w *Wizard) { w.CurrentWeek = 43 }, "currentWeek"},
		{"step 2 ok", StepContacts, func(*Wizard) {}, ""},
		{"no contacts", StepContacts, func(w *Wizard) { w.EmergencyContacts = nil }, "emergencyContacts"},
		{"four contacts", StepContacts, func(w *Wizard) {
			c := w.EmergencyContacts[0]
			w.EmergencyContacts = []ContactInput{c, c, c, c}
		}, "emergencyContacts"},
		{"blank phone", StepContacts, func(w *Wizard) { w.EmergencyContacts[0].Phone = "   " }, "emergencyContacts[0].phone"},
		{"missing relationship", StepContacts, func(w *Wizard) {
			w.EmergencyContacts = append(w.EmergencyContacts, ContactInput{Name: "Asha", Phone: "1"})
		}, "emergencyContacts[1].relationship"},
		{"step 3 always passes", StepMedical, func(w *Wizard) { *w = Wizard{} }, ""},
		{"step 0", 0, func(*Wizard) {}, "step"},
		{"step 4", 4, func(*Wizard) {}, "step"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := validWizard()
			tt.mutate(&w)
			err := ValidateStep(tt.step, w)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, utils.ErrValidation)
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
}

func TestCompleteProfileMergesWizard(t *testing.T) {
	base := models.PatientProfile{UserID: "p1", DoctorID: "dr_rajesh", DoctorName: "Dr. Rajesh"}
	w := validWizard()
	w.EmergencyContacts = append(w.EmergencyContacts, ContactInput{Name: " Asha ", Phone: "222", Relationship: "mother"})

	got, err := CompleteProfile(base, w)
	require.NoError(t, err)

	assert.True(t, got.ProfileCompleted)
	assert.Equal(t, "2026-11-20", got.DueDate)
	assert.Equal(t, 24, got.CurrentWeek)
	assert.Equal(t, "O+", got.BloodType)
	assert.Equal(t, "City Maternity", got.HospitalName)
	assert.Equal(t, "dr_rajesh", got.DoctorID)
	assert.Equal(t, "Dr. Rajesh", got.DoctorName)
	require.NotNil(t, got.HealthRecords)
	assert.Empty(t, got.HealthRecords)

	require.Len(t, got.EmergencyContacts, 2)
	assert.Equal(t, "Ravi Sharma", got.EmergencyContacts[0].Name)
	assert.Equal(t, "Asha", got.EmergencyContacts[1].Name)
	assert.Equal(t, 1, got.EmergencyContacts[1].Position)
	assert.NotEmpty(t, got.EmergencyContacts[0].ID)
	assert.NotEqual(t, got.EmergencyContacts[0].ID, got.EmergencyContacts[1].ID)

	assert.False(t, base.ProfileCompleted)
}

func TestCompleteProfileDoctorNameOverridesDisplayOnly(t *testing.T) {
	base := models.PatientProfile{UserID: "p1", DoctorID: "dr_rajesh", DoctorName: "Dr. Rajesh"}
	w := validWizard()
	w.DoctorName = "Dr. Kavya"

	got, err := CompleteProfile(base, w)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Kavya", got.DoctorName)
	assert.Equal(t, "dr_rajesh", got.DoctorID)
}

func TestCompleteProfileRejectsMissingPhone(t *testing.T) {
	base := models.PatientProfile{UserID: "p1", DoctorID: "dr_rajesh", DoctorName: "Dr. Rajesh"}
	w := validWizard()
	w.EmergencyContacts[0].Phone = ""

	got, err := CompleteProfile(base, w)
	require.Error(t, err)
	assert.Equal(t, "emergencyContacts[0].phone", fieldOf(t, err))
	assert.False(t, got.ProfileCompleted)
	assert.Equal(t, base.DueDate, got.DueDate)
	assert.Nil(t, got.EmergencyContacts)
}
