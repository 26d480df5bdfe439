package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResponseData is the envelope every endpoint replies with. Field names the
// offending input when a request fails validation.
type ResponseData struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Field   string      `json:"field,omitempty"`
}

func respond(c *gin.Context, body ResponseData) {
	c.JSON(body.Status, body)
}

// Success sends a 200 with data.
func Success(c *gin.Context, message string, data interface{}) {
	respond(c, ResponseData{Status: http.StatusOK, Message: message, Data: data})
}

// Created sends a 201 with the new resource.
func Created(c *gin.Context, message string, data interface{}) {
	respond(c, ResponseData{Status: http.StatusCreated, Message: message, Data: data})
}

// Error sends an error envelope with the given status.
func Error(c *gin.Context, statusCode int, errorMessage string) {
	respond(c, ResponseData{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Error:   errorMessage,
	})
}

// BadRequest sends a 400.
func BadRequest(c *gin.Context, errorMessage string) {
	Error(c, http.StatusBadRequest, errorMessage)
}

// ValidationFailed sends a 400 naming the rejected field.
func ValidationFailed(c *gin.Context, err error) {
	body := ResponseData{
		Status:  http.StatusBadRequest,
		Message: http.StatusText(http.StatusBadRequest),
		Error:   "Validation failed: " + FormatValidationError(err),
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	respond(c, body)
}

// Unauthorized sends a 401.
func Unauthorized(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnauthorized, errorMessage)
}

// Forbidden sends a 403.
func Forbidden(c *gin.Context, errorMessage string) {
	Error(c, http.StatusForbidden, errorMessage)
}

// NotFound sends a 404.
func NotFound(c *gin.Context, errorMessage string) {
	Error(c, http.StatusNotFound, errorMessage)
}

// Conflict sends a 409.
func Conflict(c *gin.Context, errorMessage string) {
	Error(c, http.StatusConflict, errorMessage)
}

// InternalServerError sends a 500.
func InternalServerError(c *gin.Context, errorMessage string) {
	Error(c, http.StatusInternalServerError, errorMessage)
}

// RespondError maps a service error onto the matching status code.
// Unclassified errors are reported as 500 with the given fallback text.
func RespondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		ValidationFailed(c, err)
	case errors.Is(err, ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, ErrConflict):
		Conflict(c, err.Error())
	case errors.Is(err, ErrUnauthorized):
		Unauthorized(c, err.Error())
	default:
		_ = c.Error(err)
		InternalServerError(c, fallback)
	}
}
