package middleware

import (
	"net/http"

	"mytutor/models"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only when the caller holds one of roles.
// It must run after JWTAuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := IdentityFrom(c)
		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Insufficient role for this operation",
		})
	}
}
