// Package identity extracts the caller identity forwarded by the upstream
// gateway. Authentication itself (JWT issuance, password hashing) happens
// outside this service; here a caller is an opaque user id plus a role.
package identity

import (
	"github.com/gin-gonic/gin"

	apierrors "github.com/dominusaudio/commerce-api/internal/shared/errors"
)

const (
	HeaderUserID = "X-User-ID"
	HeaderRole   = "X-User-Role"

	RoleCustomer   = "CUSTOMER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

const (
	ctxUserID = "identity.userID"
	ctxRole   = "identity.role"
)

// Middleware rejects requests without a forwarded identity and stores it on
// the gin context for handlers.
func Middleware(responder *apierrors.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			responder.Respond(c, apierrors.ErrUnauthorized.WithDetail("missing caller identity"))
			return
		}
		role := c.GetHeader(HeaderRole)
		if role == "" {
			role = RoleCustomer
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxRole, role)
		c.Next()
	}
}

// RequireRoles guards a route group to callers holding one of the roles.
func RequireRoles(responder *apierrors.Responder, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[Role(c)]; !ok {
			responder.Respond(c, apierrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// UserID returns the caller's opaque user id.
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// Role returns the caller's role.
func Role(c *gin.Context) string {
	return c.GetString(ctxRole)
}

// IsAdmin reports whether the caller holds a back-office role.
func IsAdmin(c *gin.Context) bool {
	role := Role(c)
	return role == RoleAdmin || role == RoleSuperAdmin
}
