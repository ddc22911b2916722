package middleware

import (
	"net/http"
	"strings"

	"tourdesk/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	requestContextKey = "request_context"
	operatorRoleKey   = "userRole"
)

// VerifyFunc turns a bearer token into the authenticated caller.
type VerifyFunc func(token string) (domain.RequestContext, error)

// RequireAuth rejects requests without a valid, unexpired bearer token.
func RequireAuth(verify VerifyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "token wajib diisi")
			return
		}
		rc, err := verify(strings.TrimSpace(token))
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		c.Set(requestContextKey, rc)
		c.Set(operatorRoleKey, rc.Role)
		c.Next()
	}
}

// RequireRoles only lets through roles in allowedRoles. Runs after RequireAuth.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		role := strings.ToLower(strings.TrimSpace(c.GetString(operatorRoleKey)))
		if role == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "role tidak ditemukan pada context")
			return
		}
		if _, ok := allowed[role]; !ok {
			abortAuth(c, http.StatusForbidden, "forbidden", "role tidak diizinkan")
			return
		}
		c.Next()
	}
}

// GetRequestContext returns the authenticated caller, zero when anonymous.
func GetRequestContext(c *gin.Context) domain.RequestContext {
	if v, ok := c.Get(requestContextKey); ok {
		if rc, ok := v.(domain.RequestContext); ok {
			return rc
		}
	}
	return domain.RequestContext{}
}

func abortAuth(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"error":      msg,
		"code":       code,
		"request_id": GetRequestID(c),
	})
}
