package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// ActingPrincipal 从鉴权中间件写入的上下文取操作主体，格式 role:用户ID。
// 使用记录、消课等审计字段一律以令牌身份为准，不信任请求体。
func ActingPrincipal(c *gin.Context) string {
	role, _ := c.Get("role")
	roleStr, ok := role.(string)
	if !ok || roleStr == "" {
		return "unknown"
	}

	// MapClaims里的数字解析为float64
	if userID, exists := c.Get("userID"); exists {
		if id, ok := userID.(float64); ok {
			return fmt.Sprintf("%s:%d", roleStr, uint(id))
		}
	}
	return roleStr
}
