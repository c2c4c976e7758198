package handler

import (
	identityapp "github.com/crm/backend/internal/application/identity"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler handles authentication API endpoints
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login godoc
// @ID           login
// @Summary      Staff login
// @Description  Authenticate a staff member and issue a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[identityapp.LoginResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Refresh godoc
// @ID           refreshToken
// @Summary      Refresh token pair
// @Description  Exchange a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.RefreshTokenRequest true "Refresh token"
// @Success      200 {object} APIResponse[identityapp.RefreshTokenResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Logout godoc
// @ID           logout
// @Summary      Staff logout
// @Description  Revoke the current access token
// @Tags         auth
// @Produce      json
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	staffID, err := claims.GetStaffUUID()
	if err != nil {
		h.Unauthorized(c, "Invalid token subject")
		return
	}

	input := identityapp.LogoutInput{
		StaffID:       staffID,
		TokenJTI:      claims.ID,
		TokenTTL:      claims.GetRemainingTTL(),
		TokenIssuedAt: claims.GetIssuedAtTime(),
	}
	if err := h.authService.Logout(c.Request.Context(), input); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Me godoc
// @ID           getCurrentStaff
// @Summary      Get current staff member
// @Description  Return the profile of the authenticated staff member
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[identityapp.StaffInfo]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	staffID, err := getStaffID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	info, err := h.authService.GetCurrentStaff(c.Request.Context(), staffID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, info)
}

// ChangePassword godoc
// @ID           changePassword
// @Summary      Change own password
// @Description  Change the authenticated staff member's password; all existing tokens are revoked
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.ChangePasswordRequest true "Old and new passwords"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	staffID, err := getStaffID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req identityapp.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), staffID, req); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ForceLogout godoc
// @ID           forceLogout
// @Summary      Force logout a staff member
// @Description  Revoke every outstanding token of the given staff member (admin only)
// @Tags         auth
// @Produce      json
// @Param        id path string true "Staff ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/force-logout/{id} [post]
func (h *AuthHandler) ForceLogout(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid staff ID format")
		return
	}

	if err := h.authService.ForceLogout(c.Request.Context(), staffID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
