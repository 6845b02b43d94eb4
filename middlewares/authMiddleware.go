package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/utils"
)

// AuthMiddleware only lets admin sessions through. It runs after
// SessionMiddleware.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := utils.GetSessionIdFromContext(c.Request.Context()); !ok {
			Unauthorized(c)
			return
		}
		role, _ := utils.GetRoleFromContext(c.Request.Context())
		if role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
