// README: Firebase ID-token auth middleware with role claims.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"limo/internal/infra"
)

const (
	ctxUID      = "auth.uid"
	ctxRole     = "auth.role"
	ctxDisabled = "auth.disabled"
)

const (
	RoleOwner  = "owner"
	RoleDriver = "driver"
	RoleClient = "client"
)

// Auth verifies the bearer token and stores the caller's uid and role claim.
// A nil verifier disables authentication; RequireRole then lets every request through.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Set(ctxDisabled, true)
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxUID, token.UID)
		if role, ok := token.Claims["role"].(string); ok {
			c.Set(ctxRole, role)
		}
		c.Next()
	}
}

func CallerUID(c *gin.Context) string {
	return c.GetString(ctxUID)
}

func CallerRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}

// AuthDisabled reports whether the request passed through Auth without a verifier.
func AuthDisabled(c *gin.Context) bool {
	return c.GetBool(ctxDisabled)
}

// RequireRole rejects callers whose role claim is not one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if AuthDisabled(c) {
			c.Next()
			return
		}
		role := CallerRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: " + strings.Join(roles, " or ") + " role required"})
	}
}
