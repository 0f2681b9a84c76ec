package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/smart-health-api/internal/utils"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// AuthMiddleware accepts only access tokens in a Bearer Authorization header.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, utils.CodeMissingToken,
				"Authentication required", "Authentication credentials were not provided.")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			utils.AbortWithError(c, http.StatusUnauthorized, utils.CodeInvalidToken,
				"Invalid token", "Authorization header must use the Bearer scheme.")
			return
		}
		claims, err := utils.ValidateJWT(strings.TrimSpace(tokenString), utils.TokenTypeAccess)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, utils.CodeInvalidToken,
				"Invalid token", "Given token not valid for any token type.")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole rejects authenticated users whose role is not listed.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		utils.AbortWithError(c, http.StatusForbidden, utils.CodeInsufficientPermissions,
			"Permission denied", "You do not have permission to perform this action.")
	}
}

func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}

func CurrentRole(c *gin.Context) string {
	return c.GetString(ContextUserRole)
}
