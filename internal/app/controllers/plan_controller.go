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

// InterfacePlanController 定义套餐控制器接口
type InterfacePlanController interface {
	GetPlans()
	GetPlan()
	CreatePlan()
	UpdatePlan()
	DeactivatePlan()
}

// PlanController 处理会籍套餐相关的请求
type PlanController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPlanController 创建一个新的套餐控制器
func NewPlanController(ctx *gin.Context, container *container.ServiceContainer) *PlanController {
	return &PlanController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandlePlanFunc 返回一个处理套餐请求的Gin处理函数
func HandlePlanFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPlanController(ctx, container)

		switch method {
		case "getPlans":
			controller.GetPlans()
		case "getPlan":
			controller.GetPlan()
		case "createPlan":
			controller.CreatePlan()
		case "updatePlan":
			controller.UpdatePlan()
		case "deactivatePlan":
			controller.DeactivatePlan()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetPlans 获取套餐列表
// @Summary      获取套餐列表
// @Description  获取分店的会籍套餐列表（含权益配置）
// @Tags         Plan
// @Accept       json
// @Produce      json
// @Param        branch_id query int false "分店ID"
// @Param        only_active query bool false "仅在售套餐"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /plans [get]
// @Security     BearerAuth
func (c *PlanController) GetPlans() {
	branchID, _ := strconv.ParseUint(c.Ctx.DefaultQuery("branch_id", "0"), 10, 32)
	onlyActive := c.Ctx.DefaultQuery("only_active", "false") == "true"

	planService := c.Container.GetService("plan").(services.InterfacePlanService)
	plans, err := planService.GetPlans(uint(branchID), onlyActive)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询套餐列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, plans)
}

// GetPlan 获取套餐详情
// @Summary      获取套餐详情
// @Description  根据ID获取套餐及其权益配置
// @Tags         Plan
// @Accept       json
// @Produce      json
// @Param        id path int true "套餐ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /plans/{id} [get]
// @Security     BearerAuth
func (c *PlanController) GetPlan() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	planService := c.Container.GetService("plan").(services.InterfacePlanService)
	plan, err := planService.GetPlanByID(uint(id))
	if err != nil {
		if err == services.ErrPlanNotFound {
			response.Fail(c.Ctx, code.ErrPlanNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询套餐失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, plan)
}

// PlanBenefitRequest 表示套餐中的单项权益
type PlanBenefitRequest struct {
	BenefitType string `json:"benefit_type" binding:"required" example:"sauna_session"`
	Frequency   string `json:"frequency" binding:"required" example:"weekly"` // daily/weekly/monthly/unlimited/per_membership
	LimitCount  *int   `json:"limit_count" example:"2"`                       // null表示不限次数
	Description string `json:"description" example:"每周2次桑拿"`
}

// CreatePlanRequest 表示创建套餐的请求体
type CreatePlanRequest struct {
	BranchID     uint                 `json:"branch_id" binding:"required" example:"1"`
	Name         string               `json:"name" binding:"required" example:"黄金年卡"`
	Description  string               `json:"description" example:"含桑拿和冰浴权益"`
	PricePaise   int64                `json:"price_paise" binding:"required" example:"2500000"`
	DurationDays int                  `json:"duration_days" binding:"required" example:"365"`
	Benefits     []PlanBenefitRequest `json:"benefits" binding:"required"`
}

// CreatePlan 创建套餐
// @Summary      创建套餐
// @Description  创建会籍套餐与其权益配置
// @Tags         Plan
// @Accept       json
// @Produce      json
// @Param        request body CreatePlanRequest true "套餐信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /plans [post]
// @Security     BearerAuth
func (c *PlanController) CreatePlan() {
	var req CreatePlanRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	plan := &models.MembershipPlan{
		BranchID:     req.BranchID,
		Name:         req.Name,
		Description:  req.Description,
		PricePaise:   req.PricePaise,
		DurationDays: req.DurationDays,
		IsActive:     true,
		Benefits:     toPlanBenefits(req.Benefits),
	}

	planService := c.Container.GetService("plan").(services.InterfacePlanService)
	if err := planService.CreatePlan(plan); err != nil {
		if err == services.ErrBranchNotFound {
			response.Fail(c.Ctx, code.ErrBranchNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrValidation, "创建套餐失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, plan)
}

// UpdatePlanRequest 表示更新套餐的请求体
type UpdatePlanRequest struct {
	Name         string               `json:"name" example:"白金年卡"`
	Description  string               `json:"description" example:"全权益年卡"`
	PricePaise   *int64               `json:"price_paise" example:"3500000"`
	DurationDays *int                 `json:"duration_days" example:"365"`
	Benefits     []PlanBenefitRequest `json:"benefits"` // 传入时整体替换权益配置
}

// UpdatePlan 更新套餐
// @Summary      更新套餐
// @Description  更新套餐信息，被有效会籍引用的套餐修改时版本递增
// @Tags         Plan
// @Accept       json
// @Produce      json
// @Param        id path int true "套餐ID"
// @Param        request body UpdatePlanRequest true "更新的套餐信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /plans/{id} [put]
// @Security     BearerAuth
func (c *PlanController) UpdatePlan() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdatePlanRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.PricePaise != nil {
		updates["price_paise"] = *req.PricePaise
	}
	if req.DurationDays != nil {
		updates["duration_days"] = *req.DurationDays
	}

	var benefits []models.PlanBenefit
	if req.Benefits != nil {
		benefits = toPlanBenefits(req.Benefits)
	}

	planService := c.Container.GetService("plan").(services.InterfacePlanService)
	plan, err := planService.UpdatePlan(uint(id), updates, benefits)
	if err != nil {
		if err == services.ErrPlanNotFound {
			response.Fail(c.Ctx, code.ErrPlanNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrValidation, "更新套餐失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, plan)
}

// DeactivatePlan 下架套餐
// @Summary      下架套餐
// @Description  下架套餐停止售卖，不影响已购会籍
// @Tags         Plan
// @Accept       json
// @Produce      json
// @Param        id path int true "套餐ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /plans/{id} [delete]
// @Security     BearerAuth
func (c *PlanController) DeactivatePlan() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	planService := c.Container.GetService("plan").(services.InterfacePlanService)
	if err := planService.DeactivatePlan(uint(id)); err != nil {
		if err == services.ErrPlanNotFound {
			response.Fail(c.Ctx, code.ErrPlanNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "下架套餐失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// toPlanBenefits 请求体权益转换为模型
func toPlanBenefits(reqs []PlanBenefitRequest) []models.PlanBenefit {
	benefits := make([]models.PlanBenefit, 0, len(reqs))
	for _, b := range reqs {
		benefits = append(benefits, models.PlanBenefit{
			BenefitType: b.BenefitType,
			Frequency:   models.BenefitFrequency(b.Frequency),
			LimitCount:  b.LimitCount,
			Description: b.Description,
		})
	}
	return benefits
}
