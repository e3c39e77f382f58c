package middlewares

import (
	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware membaca token dari query karena browser tidak
// bisa mengirim header Authorization saat upgrade.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" || !authenticate(c, token) {
			c.AbortWithStatus(401)
			return
		}
		c.Next()
	}
}
