package controllers

import (
	"gymcore-http-service/internal/app/middleware"
	"gymcore-http-service/internal/domain/services"
	"gymcore-http-service/internal/domain/services/container"
	"gymcore-http-service/internal/error/code"
	"gymcore-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// HealthCheckController 健康检查控制器
type HealthCheckController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHealthCheckController 创建健康检查控制器实例
func NewHealthCheckController(ctx *gin.Context, container *container.ServiceContainer) *HealthCheckController {
	return &HealthCheckController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleHealthFunc 返回一个处理健康检查请求的Gin处理函数
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthCheckController(ctx, container)

		switch method {
		case "ping":
			controller.Ping()
		case "status":
			controller.Status()
		case "cacheStats":
			controller.CacheStats()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// Ping 健康检查端点
// @Summary      健康检查
// @Description  存活探针，始终返回pong
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /ping [get]
func (h *HealthCheckController) Ping() {
	response.Success(h.Ctx, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Status 依赖组件状态检查
// @Summary      依赖组件状态检查
// @Description  检查数据库与Redis连通性
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health/status [get]
func (h *HealthCheckController) Status() {
	dbStatus := "up"
	sqlDB, err := h.Container.GetDB().DB()
	if err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}

	redisStatus := "up"
	redisService := h.Container.GetService("redis").(services.InterfaceRedisService)
	if err := redisService.Ping(); err != nil {
		redisStatus = "down"
	}

	response.Success(h.Ctx, gin.H{
		"database": dbStatus,
		"redis":    redisStatus,
	})
}

// CacheStats 获取接口缓存统计
// @Summary      获取接口缓存统计
// @Description  返回进程内GET缓存的命中统计
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health/cache-stats [get]
func (h *HealthCheckController) CacheStats() {
	response.Success(h.Ctx, middleware.CacheStats())
}
