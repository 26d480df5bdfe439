package profile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"maternity-care-server/internal/events"
	"maternity-care-server/internal/models"
	"maternity-care-server/internal/utils"
)

// Repository is the persistence the profile service needs.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	SavePatientProfile(ctx context.Context, profile *models.PatientProfile) error
}

// Service completes patient profiles.
type Service struct {
	repo Repository
	pub  events.Publisher
	log  zerolog.Logger
}

// NewService creates a Service. pub may be nil.
func NewService(repo Repository, pub events.Publisher, log zerolog.Logger) *Service {
	return &Service{repo: repo, pub: pub, log: log}
}

// Complete runs the wizard for userID and saves the result. Unknown users
// and non-patients are reported as not found.
func (s *Service) Complete(ctx context.Context, userID string, w Wizard) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RolePatient {
		return nil, fmt.Errorf("patient %s %w", userID, utils.ErrNotFound)
	}

	current := models.PatientProfile{UserID: user.ID}
	if user.Patient != nil {
		current = *user.Patient
	}
	completed, err := CompleteProfile(current, w)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SavePatientProfile(ctx, &completed); err != nil {
		return nil, fmt.Errorf("save profile of %s: %w", userID, err)
	}
	user.Patient = &completed

	s.log.Info().
		Str("patient_id", user.ID).
		Int("current_week", completed.CurrentWeek).
		Int("contacts", len(completed.EmergencyContacts)).
		Msg("profile completed")

	if s.pub != nil && completed.DoctorID != "" {
		evt, err := events.NewEvent(events.TypeProfileCompleted, events.DoctorTopic(completed.DoctorID), user.ID, user.Sanitize())
		if err == nil {
			err = s.pub.Publish(ctx, evt)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("patient_id", user.ID).Msg("publish profile event failed")
		}
	}
	return user, nil
}
