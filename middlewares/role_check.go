package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/fieldservice-app/utils"
)

// RequireRoles hanya meloloskan actor dengan salah satu role yang disebut.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		userRole := c.GetString(ContextRole)
		if userRole == "" {
			utils.RespondErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		if !allowed[userRole] {
			utils.RespondErrorCode(c, http.StatusForbidden, "FORBIDDEN",
				fmt.Errorf("%s access required", strings.Join(roles, " or ")))
			c.Abort()
			return
		}

		c.Next()
	}
}
