// middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"mytutor/models"
	"mytutor/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWTAuthMiddleware verifies the bearer token and stores the caller's id and
// role in the gin context. Credentials are issued elsewhere.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		userID, role, err := utils.ExtractClaims(tokenString)
		if err != nil {
			zap.L().Debug("Rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if !models.Role(role).Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token carries no valid role"})
			return
		}

		c.Set(utils.CtxUserID, userID)
		c.Set(utils.CtxRole, models.Role(role))
		c.Next()
	}
}

// IdentityFrom returns the caller set by JWTAuthMiddleware.
func IdentityFrom(c *gin.Context) models.Identity {
	role, _ := c.Get(utils.CtxRole)
	r, _ := role.(models.Role)
	return models.Identity{UserID: c.GetString(utils.CtxUserID), Role: r}
}
