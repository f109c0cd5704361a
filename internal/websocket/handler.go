package websocket

import (
	"net/http"

	"github.com/GharOffice/docu-flow-realty-hub/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// NewUpgrader 创建升级器,allowedOrigins 包含 "*" 时不校验 Origin
func NewUpgrader(allowedOrigins []string) *gorillaWS.Upgrader {
	allowAll := false
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		origins[o] = true
	}

	return &gorillaWS.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowAll || origin == "" || origins[origin]
		},
	}
}

// DocumentStreamHandler 订阅单个文档的活动流
// 身份由前置认证中间件写入 user_id
func DocumentStreamHandler(hub *Hub, upgrader *gorillaWS.Upgrader, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		documentID := c.Param("id")
		if err := utils.ValidateID(documentID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid document ID", "detail": err.Error()})
			return
		}

		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "unauthorized"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade 已写入错误响应
			logger.WithError(err).Warn("websocket upgrade failed")
			return
		}

		client := NewClient(uuid.New().String(), userID, documentID, hub, conn, logger)
		hub.Register(client)

		go client.ReadPump()
		go client.WritePump()
	}
}
