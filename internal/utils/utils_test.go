package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maternity-care-server/internal/config"
	"maternity-care-server/internal/models"
)

type sample struct {
	Name     string   `json:"name" validate:"required"`
	Week     int      `json:"currentWeek" validate:"min=1,max=42"`
	Contacts []string `json:"contacts" validate:"min=1"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(sample{Week: 10, Contacts: []string{"a"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
	assert.Equal(t, "is required", ve.Message)

	err = Validate(sample{Name: "x", Week: 50, Contacts: []string{"a"}})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "currentWeek", ve.Field)
	assert.Equal(t, "must be at most 42", ve.Message)

	err = Validate(sample{Name: "x", Week: 3})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "contacts", ve.Field)
	assert.Equal(t, "must have at least 1 entries", ve.Message)

	assert.NoError(t, Validate(sample{Name: "x", Week: 3, Contacts: []string{"a"}}))
}

func TestRespondErrorStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
	}{
		{NewValidationError("dueDate", "is required"), http.StatusBadRequest},
		{fmt.Errorf("user %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("email already exists: %w", ErrConflict), http.StatusConflict},
		{ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		RespondError(c, tc.err, "fallback")
		assert.Equal(t, tc.status, w.Code, tc.err.Error())

		var body ResponseData
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.status, body.Status)
		if tc.status == http.StatusInternalServerError {
			assert.Equal(t, "fallback", body.Error)
		}
		if tc.status == http.StatusBadRequest {
			assert.Equal(t, "dueDate", body.Field)
		}
	}
}

func TestTokensRoundTrip(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:                 "access",
		JWTRefreshSecret:          "refresh",
		JWTExpirationMinutes:      5,
		JWTRefreshExpirationHours: 1,
	}
	user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, Role: models.RoleDoctor}

	access, refresh, err := GenerateTokens(user, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	claims, err := ValidateToken(access, cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleDoctor, claims.Role)

	_, err = ValidateToken(access, cfg.JWTRefreshSecret)
	assert.Error(t, err)

	_, again, err := GenerateTokens(user, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, refresh, again)
}
