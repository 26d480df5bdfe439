package store

import (
	"context"
	"fmt"

	"maternity-care-server/internal/config"
	"maternity-care-server/internal/models"
)

// EnsureDefaultDoctor creates the doctor new patients are assigned to unless
// the account already exists. It reports whether it was created.
func EnsureDefaultDoctor(ctx context.Context, users UserRepository, cfg config.DefaultDoctorConfig) (bool, error) {
	doctor := &models.User{
		BaseModel: models.BaseModel{ID: cfg.ID},
		Email:     cfg.Email,
		Name:      cfg.Name,
		Role:      models.RoleDoctor,
		Doctor:    &models.DoctorProfile{Specialization: "Obstetrics & Gynecology"},
	}
	if err := doctor.SetPassword(cfg.Password); err != nil {
		return false, fmt.Errorf("hash default doctor password: %w", err)
	}
	created, err := users.EnsureUser(ctx, doctor)
	if err != nil {
		return false, fmt.Errorf("default doctor %s: %w", cfg.ID, err)
	}
	return created, nil
}
