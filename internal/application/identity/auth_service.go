package identity

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles authentication operations
type AuthService struct {
	staffRepo  identity.StaffRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	staffRepo identity.StaffRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		staffRepo:  staffRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
	}
}

// Login authenticates a staff member and returns tokens
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("email", req.Email))

	staff, err := s.staffRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Warn("Staff not found during login", zap.String("email", req.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	// Check if the account can log in at all
	if !staff.CanLogin() {
		if staff.IsLocked() {
			s.logger.Warn("Login attempt for locked account", zap.String("email", req.Email))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later or contact support")
		}
		s.logger.Warn("Login attempt for deactivated account", zap.String("email", req.Email))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	// Verify password
	if !staff.VerifyPassword(req.Password) {
		locked := staff.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.staffRepo.Save(ctx, staff); err != nil {
			s.logger.Error("Failed to update staff after login failure", zap.Error(err))
		}

		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("email", req.Email),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}

		s.logger.Warn("Invalid password attempt",
			zap.String("email", req.Email),
			zap.Int("failed_attempts", staff.FailedAttempts))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	// Generate token pair
	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		StaffID: staff.ID,
		Email:   staff.Email,
		Role:    staff.Role,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	// Record successful login
	staff.RecordLoginSuccess()
	if err := s.staffRepo.Save(ctx, staff); err != nil {
		s.logger.Error("Failed to update staff after successful login", zap.Error(err))
		// Don't fail the login - just log the error
	}

	s.logger.Info("Staff logged in successfully",
		zap.String("email", req.Email),
		zap.String("staff_id", staff.ID.String()))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		Staff:                 ToStaffInfo(staff),
	}, nil
}

// RefreshToken refreshes the access token using a valid refresh token
func (s *AuthService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*RefreshTokenResult, error) {
	refreshClaims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	staffID, err := uuid.Parse(refreshClaims.StaffID)
	if err != nil {
		s.logger.Error("Invalid staff ID in refresh token", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid staff ID in token")
	}

	// Reject refresh tokens revoked by logout
	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, refreshClaims.ID)
		if err != nil {
			s.logger.Error("Failed to check token blacklist", zap.Error(err))
		} else if revoked {
			return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
		}

		invalidated, err := s.blacklist.IsStaffTokenInvalidated(ctx, refreshClaims.StaffID, refreshClaims.GetIssuedAtTime())
		if err != nil {
			s.logger.Error("Failed to check staff token invalidation", zap.Error(err))
		} else if invalidated {
			return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
		}
	}

	// Verify the account still exists and is active
	staff, err := s.staffRepo.FindByID(ctx, staffID)
	if err != nil {
		s.logger.Warn("Staff not found during token refresh", zap.String("staff_id", staffID.String()))
		return nil, shared.NewDomainError("STAFF_NOT_FOUND", "Staff member not found")
	}
	if !staff.CanLogin() {
		s.logger.Warn("Token refresh for inactive account", zap.String("staff_id", staffID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account is no longer active")
	}

	// Re-issue with the staff member's current email and role, so role
	// changes take effect at the next refresh
	tokenPair, err := s.jwtService.RefreshTokenPair(req.RefreshToken, staff.Email, staff.Role)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	s.logger.Info("Token refreshed successfully", zap.String("staff_id", staffID.String()))

	return &RefreshTokenResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the current token via the blacklist. Without a configured
// blacklist logout is client-side only.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	s.logger.Info("Staff logout", zap.String("staff_id", input.StaffID.String()))

	if s.blacklist == nil || input.TokenJTI == "" {
		return nil
	}

	if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
		s.logger.Error("Failed to blacklist token on logout", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke token")
	}
	return nil
}

// ForceLogout revokes every token of a staff member
func (s *AuthService) ForceLogout(ctx context.Context, staffID uuid.UUID) error {
	if s.blacklist == nil {
		return shared.NewDomainError("NOT_SUPPORTED", "Token revocation is not configured")
	}

	ttl := s.jwtService.GetRefreshTokenExpiration()
	if err := s.blacklist.AddStaffTokensToBlacklist(ctx, staffID.String(), ttl); err != nil {
		s.logger.Error("Failed to invalidate staff tokens", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke tokens")
	}

	s.logger.Info("All tokens revoked for staff member", zap.String("staff_id", staffID.String()))
	return nil
}

// GetCurrentStaff retrieves the authenticated staff member's information
func (s *AuthService) GetCurrentStaff(ctx context.Context, staffID uuid.UUID) (*StaffInfo, error) {
	staff, err := s.staffRepo.FindByID(ctx, staffID)
	if err != nil {
		return nil, shared.NewDomainError("STAFF_NOT_FOUND", "Staff member not found")
	}

	info := ToStaffInfo(staff)
	return &info, nil
}

// ChangePassword changes a staff member's own password after verifying the
// old one
func (s *AuthService) ChangePassword(ctx context.Context, staffID uuid.UUID, req ChangePasswordRequest) error {
	staff, err := s.staffRepo.FindByID(ctx, staffID)
	if err != nil {
		return shared.NewDomainError("STAFF_NOT_FOUND", "Staff member not found")
	}

	if !staff.VerifyPassword(req.OldPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Old password is incorrect")
	}
	if err := staff.ChangePassword(req.NewPassword); err != nil {
		return err
	}

	if err := s.staffRepo.Save(ctx, staff); err != nil {
		s.logger.Error("Failed to update staff after password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}

	s.logger.Info("Staff password changed", zap.String("staff_id", staffID.String()))
	return nil
}

// mapTokenError maps JWT errors to domain errors
func mapTokenError(err error) error {
	switch err {
	case auth.ErrExpiredToken:
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case auth.ErrInvalidToken:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	case auth.ErrMaxRefreshExceeded:
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}
