package middleware

import (
	"net/http"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when access is denied (optional)
	OnDenied func(c *gin.Context, requiredRoles []identity.StaffRole)
}

// RequireRole creates middleware that requires a specific staff role
func RequireRole(role identity.StaffRole) gin.HandlerFunc {
	return RequireAnyRole(role)
}

// RequireAnyRole creates middleware that requires any of the given staff
// roles. The caller must be authenticated; the JWT middleware runs first.
func RequireAnyRole(roles ...identity.StaffRole) gin.HandlerFunc {
	return RequireAnyRoleWithConfig(RoleConfig{}, roles...)
}

// RequireAnyRoleWithConfig creates role middleware with custom config
func RequireAnyRoleWithConfig(cfg RoleConfig, roles ...identity.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleRoleDenied(c, cfg, roles, "No authentication claims found")
			return
		}

		actorRole := claims.GetRole()
		for _, role := range roles {
			if actorRole == role {
				if cfg.Logger != nil {
					cfg.Logger.Debug("Role check passed",
						zap.String("staff_id", claims.StaffID),
						zap.String("role", string(actorRole)),
					)
				}
				c.Next()
				return
			}
		}

		handleRoleDenied(c, cfg, roles, "Staff member lacks required role")
	}
}

// RequireAdmin creates middleware that restricts a route to administrators
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin)
}

// handleRoleDenied handles role denied scenarios
func handleRoleDenied(c *gin.Context, cfg RoleConfig, requiredRoles []identity.StaffRole, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, requiredRoles)
		return
	}

	if cfg.Logger != nil {
		claims := GetJWTClaims(c)
		staffID := ""
		role := ""
		if claims != nil {
			staffID = claims.StaffID
			role = claims.Role
		}

		required := make([]string, len(requiredRoles))
		for i, r := range requiredRoles {
			required[i] = string(r)
		}

		cfg.Logger.Warn("Role check denied",
			zap.String("reason", reason),
			zap.String("staff_id", staffID),
			zap.String("role", role),
			zap.Strings("required_roles", required),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_FORBIDDEN",
			"message": "Access denied: insufficient role",
		},
	})
}

// HasRole is a helper function to check the caller's role in handlers
func HasRole(c *gin.Context, role identity.StaffRole) bool {
	claims := GetJWTClaims(c)
	if claims == nil {
		return false
	}
	return claims.GetRole() == role
}
