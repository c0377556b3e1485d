package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard/internal/domain"
	"jobboard/internal/response"
	"jobboard/internal/security"
)

const callerKey = "caller"

// Authenticate requires a valid bearer access token and stores the caller
// in the request context.
func Authenticate(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			unauthenticated(c, "Login first to access this resource")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			unauthenticated(c, "Bearer token required")
			return
		}
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			unauthenticated(c, "Token cannot be empty")
			return
		}

		claims, err := security.ParseToken(jwtSecret, tokenString)
		if err != nil {
			if errors.Is(err, security.ErrTokenExpired) {
				unauthenticated(c, "Token expired")
				return
			}
			unauthenticated(c, "Invalid token")
			return
		}

		c.Set(callerKey, claims.Caller())
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not listed. It must run after
// Authenticate.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			unauthenticated(c, "Login first to access this resource")
			return
		}
		if !caller.HasRole(roles...) {
			response.Error(c, domain.Forbidden("Role ("+string(caller.Role)+") is not allowed to access this resource."))
			return
		}
		c.Next()
	}
}

func CallerFromContext(c *gin.Context) (domain.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return domain.Caller{}, false
	}
	caller, ok := v.(domain.Caller)
	return caller, ok
}

func unauthenticated(c *gin.Context, message string) {
	response.Error(c, domain.NewError(domain.KindUnauthenticated, message, nil))
}
