package middleware

import (
	"net/http"
	"strings"

	"gymcore-http-service/internal/domain/services"
	"gymcore-http-service/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

var jwtService services.InterfaceJWTService

// InitAuthMiddleware 初始化认证中间件
func InitAuthMiddleware(cfg *config.Config, db *gorm.DB) {
	jwtService = services.NewJWTService(cfg, db)
}

// extractToken 从授权头中提取token
func extractToken(authHeader string) string {
	// 检查并移除 "Bearer " 前缀
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

// AuthenticateAdmin 验证系统管理员权限
func AuthenticateAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Authorization header is required",
				"data":    nil,
			})
			c.Abort()
			return
		}

		// 提取token
		tokenString := extractToken(authHeader)
		token, err := jwtService.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid or expired token",
				"data":    nil,
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid token claims",
				"data":    nil,
			})
			c.Abort()
			return
		}

		// 检查是否是系统管理员
		if role, exists := claims["role"].(string); !exists || role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "Insufficient permissions: requires admin role",
				"data":    nil,
			})
			c.Abort()
			return
		}

		// 存储claims到上下文
		c.Set("userID", claims["user_id"])
		c.Set("role", claims["role"])
		c.Set("claims", claims)
		c.Next()
	}
}

// AuthenticateStaff 验证门店员工权限（管理员同样放行）
func AuthenticateStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Authorization header is required",
				"data":    nil,
			})
			c.Abort()
			return
		}

		// 提取token
		tokenString := extractToken(authHeader)
		token, err := jwtService.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid or expired token",
				"data":    nil,
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid token claims",
				"data":    nil,
			})
			c.Abort()
			return
		}

		role, exists := claims["role"].(string)
		if !exists || (role != "staff" && role != "admin") {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "Insufficient permissions: requires staff role",
				"data":    nil,
			})
			c.Abort()
			return
		}

		// 存储claims到上下文
		c.Set("userID", claims["user_id"])
		c.Set("role", role)
		// branch_id仅员工令牌携带
		if branchID, exists := claims["branch_id"]; exists && branchID != nil {
			c.Set("branchID", branchID)
		}
		c.Set("claims", claims)
		c.Next()
	}
}

// Authentication 通用的认证中间件
func Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Authorization header is required",
				"data":    nil,
			})
			c.Abort()
			return
		}

		// 检查是否是Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Authorization header format must be Bearer {token}",
				"data":    nil,
			})
			c.Abort()
			return
		}

		tokenString := parts[1]
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid token format",
				"data":    nil,
			})
			c.Abort()
			return
		}

		// 验证token
		token, err := jwtService.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid or expired token",
				"data":    nil,
			})
			c.Abort()
			return
		}

		// 提取claims并设置到上下文中
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid token claims",
				"data":    nil,
			})
			c.Abort()
			return
		}

		c.Set("userID", claims["user_id"])
		c.Set("role", claims["role"])
		c.Set("claims", claims)
		c.Next()
	}
}
