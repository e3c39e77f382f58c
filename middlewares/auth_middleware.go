package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/fieldservice-app/utils"
)

// Context keys yang diisi oleh middleware auth
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", errors.New("Authorization header missing"))
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", errors.New("format token tidak valid"))
			c.Abort()
			return
		}

		if !authenticate(c, strings.TrimPrefix(authHeader, "Bearer ")) {
			utils.RespondErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", errors.New("Invalid or expired token"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// authenticate memvalidasi token lalu menyimpan user id dan role ke context
func authenticate(c *gin.Context, tokenString string) bool {
	claims, err := utils.ParseToken(tokenString)
	if err != nil || claims == nil || claims.UserID == "" {
		return false
	}

	utils.InfoLogger.WithFields(map[string]interface{}{
		"user_id": claims.UserID,
		"role":    claims.Role,
	}).Debug("token accepted")

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
	return true
}
