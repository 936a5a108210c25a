// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"flota-service/internal/domain/unit"
	"flota-service/internal/domain/user"
	"flota-service/internal/pkg/response"
	"flota-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Auth validates the bearer token and its live session, then stores the
// caller's principal in the request context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		c.Set("principal", &user.Principal{
			ID:     claims.UserID,
			Admin:  claims.Admin,
			Unidad: unit.Normalize(claims.Unidad),
		})
		c.Set("jti", claims.ID)

		c.Next()
	}
}

// RequireAdmin rejects non-admin callers. MUST be used after Auth().
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			response.Error(c, http.StatusForbidden, "authentication required", nil)
			return
		}
		if !p.Admin {
			response.Error(c, http.StatusForbidden, "admin access required", nil)
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	// WebSocket clients cannot set headers from the browser
	return c.Query("token")
}
