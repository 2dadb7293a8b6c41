package controllers

import (
	"strconv"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/domain/services"
	"gymcore-http-service/internal/domain/services/container"
	"gymcore-http-service/internal/error/code"
	"gymcore-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceAdminController 定义管理员控制器接口
type InterfaceAdminController interface {
	GetAdmins()
	GetAdmin()
	CreateAdmin()
	UpdateAdmin()
	DeleteAdmin()
	GetDashboard()
}

// AdminController 处理管理员相关的请求
type AdminController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAdminController 创建一个新的管理员控制器
func NewAdminController(ctx *gin.Context, container *container.ServiceContainer) *AdminController {
	return &AdminController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleAdminFunc 返回一个处理管理员请求的Gin处理函数
func HandleAdminFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAdminController(ctx, container)

		switch method {
		case "getAdmins":
			controller.GetAdmins()
		case "getAdmin":
			controller.GetAdmin()
		case "createAdmin":
			controller.CreateAdmin()
		case "updateAdmin":
			controller.UpdateAdmin()
		case "deleteAdmin":
			controller.DeleteAdmin()
		case "getDashboard":
			controller.GetDashboard()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetAdmins 获取管理员列表
// @Summary      获取管理员列表
// @Description  获取所有管理员的列表，支持分页和搜索
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        page query int false "页码，默认为1"
// @Param        page_size query int false "每页条数，默认为10"
// @Param        search query string false "搜索关键词(用户名、邮箱、电话)"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /admins [get]
// @Security     BearerAuth
func (c *AdminController) GetAdmins() {
	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "10"))
	search := c.Ctx.Query("search")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	adminService := c.Container.GetService("admin").(services.InterfaceAdminService)

	admins, total, err := adminService.GetAllAdmins(page, pageSize, search)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询管理员列表失败: "+err.Error(), nil)
		return
	}

	var adminResponses []gin.H
	for _, admin := range admins {
		adminResponses = append(adminResponses, gin.H{
			"id":         admin.ID,
			"username":   admin.Username,
			"email":      admin.Email,
			"phone":      admin.Phone,
			"created_at": admin.CreatedAt,
			"updated_at": admin.UpdatedAt,
		})
	}

	response.Success(c.Ctx, gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        adminResponses,
	})
}

// GetAdmin 获取单个管理员详情
// @Summary      获取管理员详情
// @Description  根据ID获取特定管理员的详细信息
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path int true "管理员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admins/{id} [get]
// @Security     BearerAuth
func (c *AdminController) GetAdmin() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	adminService := c.Container.GetService("admin").(services.InterfaceAdminService)
	admin, err := adminService.GetAdminByID(uint(id))
	if err != nil {
		response.NotFound(c.Ctx, "管理员不存在")
		return
	}

	response.Success(c.Ctx, gin.H{
		"id":         admin.ID,
		"username":   admin.Username,
		"email":      admin.Email,
		"phone":      admin.Phone,
		"created_at": admin.CreatedAt,
		"updated_at": admin.UpdatedAt,
	})
}

// CreateAdminRequest 表示创建管理员的请求体
type CreateAdminRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"Admin@123"`
	Email    string `json:"email" example:"admin@gymcore.in"`
	Phone    string `json:"phone" example:"9100000001"`
}

// CreateAdmin 创建新管理员
// @Summary      创建管理员
// @Description  创建一个新的总部管理员
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body CreateAdminRequest true "管理员信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /admins [post]
// @Security     BearerAuth
func (c *AdminController) CreateAdmin() {
	var req CreateAdminRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	admin := &models.Admin{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Phone,
	}

	adminService := c.Container.GetService("admin").(services.InterfaceAdminService)
	if err := adminService.CreateAdmin(admin); err != nil {
		if err.Error() == "用户名已存在" {
			response.FailWithMessage(c.Ctx, code.ErrUserAlreadyExist, err.Error(), nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建管理员失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"id":         admin.ID,
		"username":   admin.Username,
		"email":      admin.Email,
		"phone":      admin.Phone,
		"created_at": admin.CreatedAt,
	})
}

// UpdateAdminRequest 表示更新管理员的请求体
type UpdateAdminRequest struct {
	Username string `json:"username" example:"admin2"`
	Password string `json:"password" example:"NewPass@456"`
	Email    string `json:"email" example:"admin2@gymcore.in"`
	Phone    string `json:"phone" example:"9100000002"`
}

// UpdateAdmin 更新管理员信息
// @Summary      更新管理员
// @Description  更新现有管理员的信息
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path int true "管理员ID"
// @Param        request body UpdateAdminRequest true "更新的管理员信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admins/{id} [put]
// @Security     BearerAuth
func (c *AdminController) UpdateAdmin() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdateAdminRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.Password != "" {
		updates["password"] = req.Password
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}

	adminService := c.Container.GetService("admin").(services.InterfaceAdminService)
	admin, err := adminService.UpdateAdmin(uint(id), updates)
	if err != nil {
		if err.Error() == "管理员不存在" {
			response.NotFound(c.Ctx, "管理员不存在")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新管理员失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"id":         admin.ID,
		"username":   admin.Username,
		"email":      admin.Email,
		"phone":      admin.Phone,
		"updated_at": admin.UpdatedAt,
	})
}

// DeleteAdmin 删除管理员
// @Summary      删除管理员
// @Description  删除指定ID的管理员，系统至少保留一个管理员
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path int true "管理员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admins/{id} [delete]
// @Security     BearerAuth
func (c *AdminController) DeleteAdmin() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	adminService := c.Container.GetService("admin").(services.InterfaceAdminService)
	if err := adminService.DeleteAdmin(uint(id)); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// GetDashboard 获取总部看板统计
// @Summary      获取总部看板统计
// @Description  获取分店数、会员数、今日进场、待收账单、本月营收等汇总指标
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /dashboard [get]
// @Security     BearerAuth
func (c *AdminController) GetDashboard() {
	adminService := c.Container.GetService("admin").(services.InterfaceAdminService)

	stats, err := adminService.GetDashboardStats()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询看板统计失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, stats)
}
