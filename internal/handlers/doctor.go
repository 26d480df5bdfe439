package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"maternity-care-server/internal/dashboard"
	"maternity-care-server/internal/middleware"
	"maternity-care-server/internal/store"
	"maternity-care-server/internal/utils"
)

// DoctorHandler serves the doctor dashboard.
type DoctorHandler struct {
	Dashboard *dashboard.Service
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(dash *dashboard.Service) *DoctorHandler {
	return &DoctorHandler{Dashboard: dash}
}

func doctorID(c *gin.Context) (string, bool) {
	id, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
	}
	return id, ok
}

// GetPatients lists the doctor's assigned patients.
func (h *DoctorHandler) GetPatients(c *gin.Context) {
	id, ok := doctorID(c)
	if !ok {
		return
	}
	patients, err := h.Dashboard.Patients(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch patients")
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

// GetPatientRecords returns one assigned patient's records and summary.
func (h *DoctorHandler) GetPatientRecords(c *gin.Context) {
	id, ok := doctorID(c)
	if !ok {
		return
	}
	detail, err := h.Dashboard.PatientRecords(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch patient records")
		return
	}
	utils.Success(c, "Patient records fetched successfully", detail)
}

// GetStats returns the overview cards.
func (h *DoctorHandler) GetStats(c *gin.Context) {
	id, ok := doctorID(c)
	if !ok {
		return
	}
	stats, err := h.Dashboard.Stats(c.Request.Context(), id, store.Now())
	if err != nil {
		utils.RespondError(c, err, "Failed to compute stats")
		return
	}
	utils.Success(c, "Stats fetched successfully", stats)
}

// GetNotifications returns the newest notifications, ?limit= of them.
func (h *DoctorHandler) GetNotifications(c *gin.Context) {
	id, ok := doctorID(c)
	if !ok {
		return
	}
	limit := dashboard.DefaultNotificationLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	list, err := h.Dashboard.Notifications(c.Request.Context(), id, limit, store.Now())
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch notifications")
		return
	}
	utils.Success(c, "Notifications fetched successfully", list)
}

// MarkNotificationRead flags a notification as read.
func (h *DoctorHandler) MarkNotificationRead(c *gin.Context) {
	id, ok := doctorID(c)
	if !ok {
		return
	}
	n, err := h.Dashboard.MarkRead(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to mark notification as read")
		return
	}
	utils.Success(c, "Notification marked as read", n)
}
