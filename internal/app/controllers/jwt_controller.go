package controllers

import (
	"gymcore-http-service/internal/domain/services"
	"gymcore-http-service/internal/domain/services/container"
	"gymcore-http-service/internal/error/code"
	"gymcore-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceJWTController 定义认证控制器接口
type InterfaceJWTController interface {
	Login()
}

// JWTController 处理身份验证请求
type JWTController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewJWTController 创建一个新的认证控制器
func NewJWTController(ctx *gin.Context, container *container.ServiceContainer) *JWTController {
	return &JWTController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest 表示登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// LoginResponse 表示登录响应
type LoginResponse struct {
	Code    int         `json:"code" example:"100000"`
	Message string      `json:"message" example:"Login successful"`
	Data    interface{} `json:"data"`
}

// ErrorResponse 表示错误响应
type ErrorResponse struct {
	Code    int         `json:"code" example:"100004"`
	Message string      `json:"message" example:"Invalid username or password"`
	Data    interface{} `json:"data"`
}

// HandleJWTFunc 返回一个处理JWT认证请求的Gin处理函数
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewJWTController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// Login 处理用户登录
// @Summary      用户登录
// @Description  总部管理员或分店员工（店长/前台）登录，按角色返回JWT令牌
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "登录参数"
// @Success      200  {object}  LoginResponse
// @Failure      400  {object}  ErrorResponse  "Bad request"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /auth/login [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)

	result, err := jwtService.Login(req.Username, req.Password)
	if err != nil {
		response.Unauthorized(c.Ctx)
		return
	}

	response.Success(c.Ctx, gin.H{
		"token":     result.Token,
		"user_id":   result.UserID,
		"role":      result.Role,
		"username":  result.Username,
		"branch_id": result.BranchID,
	})
}
