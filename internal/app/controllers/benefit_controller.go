package controllers

import (
	"strconv"

	"gymcore-http-service/internal/domain/services"
	"gymcore-http-service/internal/domain/services/container"
	"gymcore-http-service/internal/error/code"
	"gymcore-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceBenefitController 定义权益控制器接口
type InterfaceBenefitController interface {
	GetBalances()
	ValidateUsage()
	RecordUsage()
	GetUsageHistory()
}

// BenefitController 处理会籍权益相关的请求
type BenefitController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewBenefitController 创建一个新的权益控制器
func NewBenefitController(ctx *gin.Context, container *container.ServiceContainer) *BenefitController {
	return &BenefitController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleBenefitFunc 返回一个处理权益请求的Gin处理函数
func HandleBenefitFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewBenefitController(ctx, container)

		switch method {
		case "getBalances":
			controller.GetBalances()
		case "validateUsage":
			controller.ValidateUsage()
		case "recordUsage":
			controller.RecordUsage()
		case "getUsageHistory":
			controller.GetUsageHistory()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetBalances 获取权益余额
// @Summary      获取权益余额
// @Description  按当前计期窗口计算会籍各项权益剩余次数
// @Tags         Benefit
// @Accept       json
// @Produce      json
// @Param        id path int true "会籍ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /memberships/{id}/benefits [get]
// @Security     BearerAuth
func (c *BenefitController) GetBalances() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	benefitService := c.Container.GetService("benefit").(services.InterfaceBenefitService)
	balances, err := benefitService.GetBalances(uint(id))
	if err != nil {
		if err == services.ErrMembershipNotFound {
			response.Fail(c.Ctx, code.ErrMembershipNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询权益余额失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, balances)
}

// ValidateUsageRequest 表示权益使用校验的请求体
type ValidateUsageRequest struct {
	BenefitType string `json:"benefit_type" binding:"required" example:"sauna_session"`
}

// ValidateUsage 校验权益可用性
// @Summary      校验权益可用性
// @Description  校验会籍在当前计期窗口内是否可使用指定权益，不登记使用
// @Tags         Benefit
// @Accept       json
// @Produce      json
// @Param        id path int true "会籍ID"
// @Param        request body ValidateUsageRequest true "权益类型"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /memberships/{id}/benefits/validate [post]
// @Security     BearerAuth
func (c *BenefitController) ValidateUsage() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req ValidateUsageRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	benefitService := c.Container.GetService("benefit").(services.InterfaceBenefitService)
	validation, err := benefitService.ValidateUsage(uint(id), req.BenefitType)
	if err != nil {
		if err == services.ErrMembershipNotFound {
			response.Fail(c.Ctx, code.ErrMembershipNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "权益校验失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, validation)
}

// RecordUsageRequest 表示权益使用登记的请求体。
// 操作主体取自令牌身份，不接受请求体指定。
type RecordUsageRequest struct {
	BenefitType string `json:"benefit_type" binding:"required" example:"ice_bath_session"`
	UsageCount  int    `json:"usage_count" example:"1"`
	Notes       string `json:"notes" example:"前台人工登记"`
}

// RecordUsage 登记权益使用
// @Summary      登记权益使用
// @Description  校验并登记一次权益使用，扣减当前窗口余额
// @Tags         Benefit
// @Accept       json
// @Produce      json
// @Param        id path int true "会籍ID"
// @Param        request body RecordUsageRequest true "使用信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /memberships/{id}/benefits/usage [post]
// @Security     BearerAuth
func (c *BenefitController) RecordUsage() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req RecordUsageRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}
	if req.UsageCount <= 0 {
		req.UsageCount = 1
	}

	benefitService := c.Container.GetService("benefit").(services.InterfaceBenefitService)
	record, err := benefitService.RecordUsage(uint(id), req.BenefitType, req.UsageCount, ActingPrincipal(c.Ctx), req.Notes, nil)
	if err != nil {
		switch err {
		case services.ErrMembershipNotFound:
			response.Fail(c.Ctx, code.ErrMembershipNotFound, nil)
		case services.ErrMembershipNotActive:
			response.Fail(c.Ctx, code.ErrMembershipNotActive, nil)
		case services.ErrBenefitNotInPlan:
			response.Fail(c.Ctx, code.ErrBenefitNotInPlan, nil)
		case services.ErrBenefitExhausted:
			response.Fail(c.Ctx, code.ErrBenefitExhausted, nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "登记权益使用失败: "+err.Error(), nil)
		}
		return
	}

	response.Success(c.Ctx, record)
}

// GetUsageHistory 获取权益使用记录
// @Summary      获取权益使用记录
// @Description  查询会籍的权益使用历史，可按权益类型过滤
// @Tags         Benefit
// @Accept       json
// @Produce      json
// @Param        id path int true "会籍ID"
// @Param        benefit_type query string false "权益类型"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /memberships/{id}/benefits/history [get]
// @Security     BearerAuth
func (c *BenefitController) GetUsageHistory() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	benefitType := c.Ctx.Query("benefit_type")

	benefitService := c.Container.GetService("benefit").(services.InterfaceBenefitService)
	records, err := benefitService.GetUsageHistory(uint(id), benefitType)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询使用记录失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, records)
}
