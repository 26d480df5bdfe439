package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"maternity-care-server/internal/dashboard"
	"maternity-care-server/internal/events"
	"maternity-care-server/internal/middleware"
	"maternity-care-server/internal/models"
	"maternity-care-server/internal/records"
	"maternity-care-server/internal/store"
	"maternity-care-server/internal/utils"
)

// HealthRecordHandler serves a patient's own health records.
type HealthRecordHandler struct {
	Users     store.UserRepository
	Records   records.Repository
	Publisher events.Publisher
	Log       zerolog.Logger
}

// NewHealthRecordHandler creates a new HealthRecordHandler.
func NewHealthRecordHandler(users store.UserRepository, recs records.Repository, pub events.Publisher, log zerolog.Logger) *HealthRecordHandler {
	return &HealthRecordHandler{Users: users, Records: recs, Publisher: pub, Log: log}
}

// CreateHealthRecordRequest represents the request body for logging a record.
type CreateHealthRecordRequest struct {
	Type models.RecordType `json:"type" binding:"required"`
	Data json.RawMessage   `json:"data" binding:"required"`
}

// load opens the record store of the authenticated patient.
func (h *HealthRecordHandler) load(c *gin.Context) (*models.User, *records.Store, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return nil, nil, false
	}
	ctx := c.Request.Context()
	user, err := h.Users.GetUser(ctx, userID)
	if err != nil {
		utils.RespondError(c, err, "Failed to load user")
		return nil, nil, false
	}
	rs, err := records.Load(ctx, h.Records, records.OwnerOf(user),
		records.WithPublisher(h.Publisher),
		records.WithLogger(h.Log),
	)
	if err != nil {
		utils.RespondError(c, err, "Failed to load health records")
		return nil, nil, false
	}
	return user, rs, true
}

// queryType parses an optional ?type= filter.
func queryType(c *gin.Context) (models.RecordType, bool) {
	t := models.RecordType(c.Query("type"))
	if t != "" && !t.Valid() {
		utils.BadRequest(c, "Unknown record type: "+string(t))
		return "", false
	}
	return t, true
}

// CreateHealthRecord appends a record for the authenticated patient.
func (h *HealthRecordHandler) CreateHealthRecord(c *gin.Context) {
	var req CreateHealthRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, rs, ok := h.load(c)
	if !ok {
		return
	}
	if !user.ProfileCompleted() {
		utils.Forbidden(c, "Complete your profile before logging health records")
		return
	}

	rec, err := rs.AddRawRecord(c.Request.Context(), req.Type, req.Data)
	if err != nil {
		utils.RespondError(c, err, "Failed to add health record")
		return
	}
	utils.Created(c, "Health record added successfully", rec)
}

// ListHealthRecords returns the patient's records in the order they were
// logged, optionally filtered by ?type=.
func (h *HealthRecordHandler) ListHealthRecords(c *gin.Context) {
	t, ok := queryType(c)
	if !ok {
		return
	}
	_, rs, ok := h.load(c)
	if !ok {
		return
	}

	list := rs.Records()
	if t != "" {
		list = rs.RecordsOfType(t)
	}
	utils.Success(c, "Health records fetched successfully", list)
}

// LatestHealthRecord returns the most recent record of ?type=.
func (h *HealthRecordHandler) LatestHealthRecord(c *gin.Context) {
	t, ok := queryType(c)
	if !ok {
		return
	}
	if t == "" {
		utils.BadRequest(c, "Query parameter type is required")
		return
	}
	_, rs, ok := h.load(c)
	if !ok {
		return
	}

	rec, found := rs.LatestOfType(t)
	if !found {
		utils.NotFound(c, "No "+string(t)+" records yet")
		return
	}
	utils.Success(c, "Latest health record fetched successfully", rec)
}

// Summary returns the patient dashboard: latest values, averages, status and
// pregnancy progress.
func (h *HealthRecordHandler) Summary(c *gin.Context) {
	user, rs, ok := h.load(c)
	if !ok {
		return
	}
	utils.Success(c, "Summary fetched successfully", dashboard.PatientOverviewOf(user, rs.Records()))
}
