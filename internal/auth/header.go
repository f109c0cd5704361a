package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDHeader 开发环境下携带用户 ID 的请求头
const UserIDHeader = "X-User-ID"

// HeaderAuthMiddleware 从请求头读取用户身份,仅用于开发和测试环境
func HeaderAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" && c.IsWebsocket() {
			userID = strings.TrimSpace(c.Query("user_id"))
		}
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "missing " + UserIDHeader + " header",
			})
			return
		}

		setIdentity(c, userID)
		c.Next()
	}
}
