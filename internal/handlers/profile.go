package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"maternity-care-server/internal/middleware"
	"maternity-care-server/internal/profile"
	"maternity-care-server/internal/utils"
)

// ProfileHandler serves the onboarding wizard.
type ProfileHandler struct {
	Profiles *profile.Service
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *profile.Service) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

// StepResult reports a successful step check.
type StepResult struct {
	Step  int  `json:"step"`
	Valid bool `json:"valid"`
}

// ValidateStep checks one wizard step without saving anything.
func (h *ProfileHandler) ValidateStep(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		utils.BadRequest(c, "Step must be a number")
		return
	}

	var wizard profile.Wizard
	if !utils.BindAndValidate(c, &wizard) {
		return
	}

	if err := profile.ValidateStep(step, wizard); err != nil {
		utils.RespondError(c, err, "Failed to validate step")
		return
	}
	utils.Success(c, "Step is valid", StepResult{Step: step, Valid: true})
}

// Complete validates all steps and saves the profile.
func (h *ProfileHandler) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var wizard profile.Wizard
	if !utils.BindAndValidate(c, &wizard) {
		return
	}

	user, err := h.Profiles.Complete(c.Request.Context(), userID, wizard)
	if err != nil {
		utils.RespondError(c, err, "Failed to complete profile")
		return
	}
	utils.Success(c, "Profile completed successfully", user.Sanitize())
}
