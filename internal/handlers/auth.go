package handlers

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"maternity-care-server/internal/avatars"
	"maternity-care-server/internal/config"
	"maternity-care-server/internal/middleware"
	"maternity-care-server/internal/models"
	"maternity-care-server/internal/store"
	"maternity-care-server/internal/utils"
)

const refreshCookie = "refresh_token"

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Users   store.UserRepository
	Tokens  store.TokenRepository
	Avatars avatars.Store
	Cfg     *config.Config
	Log     zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users store.UserRepository, tokens store.TokenRepository, avatarStore avatars.Store, cfg *config.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Avatars: avatarStore, Cfg: cfg, Log: log}
}

// SignupRequest represents the request body for user registration.
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=patient doctor"`
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=patient doctor"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Signup registers a user and logs them in. Patients are assigned to the
// default doctor and start with an incomplete profile.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user := models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  models.Role(req.Role),
	}
	switch user.Role {
	case models.RolePatient:
		user.Patient = &models.PatientProfile{
			DoctorID:   h.Cfg.DefaultDoctor.ID,
			DoctorName: h.Cfg.DefaultDoctor.Name,
		}
	case models.RoleDoctor:
		user.Doctor = &models.DoctorProfile{}
	}

	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.Users.CreateUser(c.Request.Context(), &user); err != nil {
		utils.RespondError(c, err, "Failed to create user")
		return
	}

	h.Log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user signed up")

	resp, ok := h.issueTokens(c, &user)
	if !ok {
		return
	}
	utils.Created(c, "User registered successfully", resp)
}

// Login authenticates a user by email, password and role.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Users.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.Unauthorized(c, "Invalid email, password or role")
		} else {
			utils.RespondError(c, err, "Database error")
		}
		return
	}

	if user.Role != models.Role(req.Role) || !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email, password or role")
		return
	}

	resp, ok := h.issueTokens(c, user)
	if !ok {
		return
	}
	utils.Success(c, "Login successful", resp)
}

func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User) (LoginResponse, bool) {
	accessToken, refreshTokenString, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return LoginResponse{}, false
	}

	refreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshTokenString,
		ExpiresAt: store.Now().Add(h.refreshTTL()),
	}
	if err := h.Tokens.CreateRefreshToken(c.Request.Context(), &refreshToken); err != nil {
		utils.RespondError(c, err, "Failed to store refresh token")
		return LoginResponse{}, false
	}

	h.setRefreshCookie(c, refreshTokenString, int(h.refreshTTL().Seconds()))
	return LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         user.Sanitize(),
	}, true
}

func (h *AuthHandler) refreshTTL() time.Duration {
	return time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetCookie(
		refreshCookie,
		value,
		maxAge,
		"/",
		"",
		!h.Cfg.IsDev(),
		true,
	)
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken rotates a refresh token and issues a new access token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	// Cookie first, request body as a fallback
	presented, err := c.Cookie(refreshCookie)
	if err != nil || presented == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		presented = req.RefreshToken
	}

	claims, err := utils.ValidateToken(presented, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token structure or signature: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	stored, err := h.Tokens.FindActiveRefreshToken(ctx, presented, claims.UserID, store.Now())
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		} else {
			utils.RespondError(c, err, "Database error checking refresh token")
		}
		return
	}

	user, err := h.Users.GetUser(ctx, claims.UserID)
	if err != nil {
		utils.RespondError(c, err, "Failed to find user associated with token")
		return
	}

	newAccessToken, newRefreshTokenString, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate new tokens: "+err.Error())
		return
	}

	next := models.RefreshToken{
		UserID:    user.ID,
		Token:     newRefreshTokenString,
		ExpiresAt: store.Now().Add(h.refreshTTL()),
	}
	if err := h.Tokens.RotateRefreshToken(ctx, stored, &next); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.Unauthorized(c, "Refresh token was already used")
		} else {
			utils.RespondError(c, err, "Failed to store new refresh token")
		}
		return
	}

	h.setRefreshCookie(c, newRefreshTokenString, int(h.refreshTTL().Seconds()))
	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshTokenString,
	})
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout revokes the presented refresh token and clears the cookie. Unknown
// or already revoked tokens are not an error.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(refreshCookie)
	}
	if req.RefreshToken == "" {
		utils.BadRequest(c, "Refresh token is required")
		return
	}

	revoked, err := h.Tokens.RevokeRefreshToken(c.Request.Context(), req.RefreshToken, store.Now())
	if err != nil {
		utils.RespondError(c, err, "Failed to revoke refresh token")
		return
	}

	h.setRefreshCookie(c, "", -1)
	if !revoked {
		utils.Success(c, "Logout successful (token not found or already invalid).", nil)
		return
	}
	utils.Success(c, "Logout successful. Refresh token has been invalidated.", nil)
}

// Me returns the authenticated user with their profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.Users.GetUser(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err, "Database error")
		return
	}
	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// UploadAvatar stores a new profile photo sent as multipart field "avatar".
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		utils.BadRequest(c, "Avatar file is required: "+err.Error())
		return
	}
	if fileHeader.Size > h.Cfg.Avatars.MaxBytes {
		utils.BadRequest(c, "Avatar file is too large")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalServerError(c, "Failed to open uploaded file: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.Cfg.Avatars.MaxBytes+1))
	if err != nil {
		utils.InternalServerError(c, "Failed to read uploaded file: "+err.Error())
		return
	}
	contentType, err := avatars.Detect(data, h.Cfg.Avatars.MaxBytes)
	if err != nil {
		utils.RespondError(c, err, "Invalid avatar")
		return
	}

	ctx := c.Request.Context()
	url, err := h.Avatars.Put(ctx, userID, contentType, data)
	if err != nil {
		utils.RespondError(c, err, "Failed to store avatar")
		return
	}
	if err := h.Users.UpdateAvatar(ctx, userID, url); err != nil {
		utils.RespondError(c, err, "Failed to update avatar")
		return
	}

	user, err := h.Users.GetUser(ctx, userID)
	if err != nil {
		utils.RespondError(c, err, "Database error")
		return
	}
	utils.Success(c, "Avatar updated successfully", user.Sanitize())
}
