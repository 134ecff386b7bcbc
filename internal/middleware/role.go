package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through when the caller holds one of roles.
// It must run after AuthRequired.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(UserIDKey); !exists {
			unauthorized(c)
			return
		}

		userRole := models.Role(c.GetString(UserRoleKey))
		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, models.NewAPIError(
			models.ErrForbidden,
			"Insufficient permissions",
			map[string]interface{}{"role": userRole},
		))
	}
}
