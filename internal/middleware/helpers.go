// internal/middleware/helpers.go
package middleware

import (
	"flota-service/internal/domain/user"

	"github.com/gin-gonic/gin"
)

// GetPrincipal gets the authenticated principal from context.
func GetPrincipal(c *gin.Context) (*user.Principal, bool) {
	v, exists := c.Get("principal")
	if !exists {
		return nil, false
	}

	p, ok := v.(*user.Principal)
	return p, ok
}

// MustGetPrincipal gets the principal from context or panics. Only for
// handlers mounted behind Auth().
func MustGetPrincipal(c *gin.Context) *user.Principal {
	p, ok := GetPrincipal(c)
	if !ok {
		panic("principal not found in context")
	}
	return p
}

// GetJTI gets the token id from context.
func GetJTI(c *gin.Context) (string, bool) {
	jti, exists := c.Get("jti")
	if !exists {
		return "", false
	}

	jtiStr, ok := jti.(string)
	return jtiStr, ok
}

// IsAdmin checks if the caller is an admin.
func IsAdmin(c *gin.Context) bool {
	p, ok := GetPrincipal(c)
	return ok && p.Admin
}
