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

// InterfaceBranchController 定义分店控制器接口
type InterfaceBranchController interface {
	GetBranches()
	GetBranch()
	CreateBranch()
	UpdateBranch()
	DeleteBranch()
}

// BranchController 处理分店相关的请求
type BranchController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewBranchController 创建一个新的分店控制器
func NewBranchController(ctx *gin.Context, container *container.ServiceContainer) *BranchController {
	return &BranchController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleBranchFunc 返回一个处理分店请求的Gin处理函数
func HandleBranchFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewBranchController(ctx, container)

		switch method {
		case "getBranches":
			controller.GetBranches()
		case "getBranch":
			controller.GetBranch()
		case "createBranch":
			controller.CreateBranch()
		case "updateBranch":
			controller.UpdateBranch()
		case "deleteBranch":
			controller.DeleteBranch()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetBranches 获取分店列表
// @Summary      获取分店列表
// @Description  获取所有分店
// @Tags         Branch
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /branches [get]
// @Security     BearerAuth
func (c *BranchController) GetBranches() {
	branchService := c.Container.GetService("branch").(services.InterfaceBranchService)

	branches, err := branchService.GetBranches()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询分店列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, branches)
}

// GetBranch 获取分店详情
// @Summary      获取分店详情
// @Description  根据ID获取分店详细信息
// @Tags         Branch
// @Accept       json
// @Produce      json
// @Param        id path int true "分店ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /branches/{id} [get]
// @Security     BearerAuth
func (c *BranchController) GetBranch() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	branchService := c.Container.GetService("branch").(services.InterfaceBranchService)
	branch, err := branchService.GetBranchByID(uint(id))
	if err != nil {
		response.NotFound(c.Ctx, "分店不存在")
		return
	}

	response.Success(c.Ctx, branch)
}

// CreateBranchRequest 表示创建分店的请求体
type CreateBranchRequest struct {
	Code     string `json:"code" binding:"required" example:"BLR01"`
	Name     string `json:"name" binding:"required" example:"Indiranagar分店"`
	Address  string `json:"address" example:"100 Feet Road, Indiranagar, Bengaluru"`
	Phone    string `json:"phone" example:"9100000010"`
	Timezone string `json:"timezone" example:"Asia/Kolkata"`
}

// CreateBranch 创建分店
// @Summary      创建分店
// @Description  创建一个新的分店，编码唯一，时区为IANA名称
// @Tags         Branch
// @Accept       json
// @Produce      json
// @Param        request body CreateBranchRequest true "分店信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /branches [post]
// @Security     BearerAuth
func (c *BranchController) CreateBranch() {
	var req CreateBranchRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	branch := &models.Branch{
		Code:     req.Code,
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		Timezone: req.Timezone,
	}

	branchService := c.Container.GetService("branch").(services.InterfaceBranchService)
	if err := branchService.CreateBranch(branch); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "创建分店失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, branch)
}

// UpdateBranchRequest 表示更新分店的请求体
type UpdateBranchRequest struct {
	Name                  string `json:"name" example:"Koramangala分店"`
	Address               string `json:"address" example:"5th Block, Koramangala, Bengaluru"`
	Phone                 string `json:"phone" example:"9100000011"`
	Timezone              string `json:"timezone" example:"Asia/Kolkata"`
	RazorpayWebhookSecret string `json:"razorpay_webhook_secret" example:""`
	PhonePeSaltKey        string `json:"phonepe_salt_key" example:""`
	PhonePeSaltIndex      string `json:"phonepe_salt_index" example:"1"`
}

// UpdateBranch 更新分店信息
// @Summary      更新分店
// @Description  更新分店资料与支付网关密钥
// @Tags         Branch
// @Accept       json
// @Produce      json
// @Param        id path int true "分店ID"
// @Param        request body UpdateBranchRequest true "更新的分店信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /branches/{id} [put]
// @Security     BearerAuth
func (c *BranchController) UpdateBranch() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdateBranchRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Timezone != "" {
		updates["timezone"] = req.Timezone
	}
	if req.RazorpayWebhookSecret != "" {
		updates["razorpay_webhook_secret"] = req.RazorpayWebhookSecret
	}
	if req.PhonePeSaltKey != "" {
		updates["phone_pe_salt_key"] = req.PhonePeSaltKey
	}
	if req.PhonePeSaltIndex != "" {
		updates["phone_pe_salt_index"] = req.PhonePeSaltIndex
	}

	branchService := c.Container.GetService("branch").(services.InterfaceBranchService)
	branch, err := branchService.UpdateBranch(uint(id), updates)
	if err != nil {
		if err == services.ErrBranchNotFound {
			response.NotFound(c.Ctx, "分店不存在")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新分店失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, branch)
}

// DeleteBranch 删除分店
// @Summary      删除分店
// @Description  删除指定分店，仍有会员或终端的分店不允许删除
// @Tags         Branch
// @Accept       json
// @Produce      json
// @Param        id path int true "分店ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /branches/{id} [delete]
// @Security     BearerAuth
func (c *BranchController) DeleteBranch() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	branchService := c.Container.GetService("branch").(services.InterfaceBranchService)
	if err := branchService.DeleteBranch(uint(id)); err != nil {
		if err == services.ErrBranchNotFound {
			response.NotFound(c.Ctx, "分店不存在")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}
