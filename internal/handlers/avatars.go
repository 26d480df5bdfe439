package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maternity-care-server/internal/avatars"
	"maternity-care-server/internal/utils"
)

// AvatarHandler serves photos kept by the database avatar backend.
type AvatarHandler struct {
	Blobs *avatars.DBStore
}

// NewAvatarHandler creates a new AvatarHandler.
func NewAvatarHandler(blobs *avatars.DBStore) *AvatarHandler {
	return &AvatarHandler{Blobs: blobs}
}

// Get writes the stored photo of :userId.
func (h *AvatarHandler) Get(c *gin.Context) {
	blob, err := h.Blobs.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.RespondError(c, err, "Failed to load avatar")
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}
