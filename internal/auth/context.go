package auth

import (
	"context"

	"github.com/gin-gonic/gin"
)

type userIDKey struct{}

// WithUserID 将当前用户 ID 写入 context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext 从 context 读取当前用户 ID
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return ""
}

// setIdentity 同时写入 gin 上下文和请求 context
func setIdentity(c *gin.Context, userID string) {
	c.Set("user_id", userID)
	c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
}
