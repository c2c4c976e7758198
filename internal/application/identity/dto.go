package identity

import (
	"time"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginRequest contains the credentials for a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	Staff                 StaffInfo `json:"staff"`
}

// StaffInfo contains basic staff information returned after login
type StaffInfo struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Role    string    `json:"role"`
	Country string    `json:"country,omitempty"`
}

// RefreshTokenRequest contains the input for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LogoutInput contains the input for staff logout
type LogoutInput struct {
	StaffID       uuid.UUID
	TokenJTI      string
	TokenTTL      time.Duration
	TokenIssuedAt time.Time
}

// ChangePasswordRequest contains the input for a password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ==================== Staff management DTOs ====================

// CreateStaffRequest represents a request to create a staff member
type CreateStaffRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=ADMIN AGENT DELIVERY VIEWER"`
	Country  string `json:"country" binding:"omitempty,max=40"`
}

// UpdateStaffRequest represents a partial update of a staff member
type UpdateStaffRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=200"`
	Role    *string `json:"role" binding:"omitempty,oneof=ADMIN AGENT DELIVERY VIEWER"`
	Country *string `json:"country" binding:"omitempty,max=40"`
	Active  *bool   `json:"active"`
}

// StaffListFilter represents filter options for the staff list
type StaffListFilter struct {
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=ADMIN AGENT DELIVERY VIEWER"`
	Country  string `form:"country"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StaffResponse represents a staff member in API responses
type StaffResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Country     string     `json:"country,omitempty"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToStaffInfo converts a domain staff member to the login info DTO
func ToStaffInfo(staff *identity.Staff) StaffInfo {
	return StaffInfo{
		ID:      staff.ID,
		Name:    staff.Name,
		Email:   staff.Email,
		Role:    string(staff.Role),
		Country: staff.Country,
	}
}

// ToStaffResponse converts a domain staff member to a response DTO
func ToStaffResponse(staff *identity.Staff) StaffResponse {
	return StaffResponse{
		ID:          staff.ID,
		Name:        staff.Name,
		Email:       staff.Email,
		Role:        string(staff.Role),
		Country:     staff.Country,
		Active:      staff.Active,
		LastLoginAt: staff.LastLoginAt,
		CreatedAt:   staff.CreatedAt,
		UpdatedAt:   staff.UpdatedAt,
	}
}
