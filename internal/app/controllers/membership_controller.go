package controllers

import (
	"strconv"
	"time"

	"gymcore-http-service/internal/domain/services"
	"gymcore-http-service/internal/domain/services/container"
	"gymcore-http-service/internal/error/code"
	"gymcore-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceMembershipController 定义会籍控制器接口
type InterfaceMembershipController interface {
	PurchaseMembership()
	GetMembership()
	RenewMembership()
	FreezeMembership()
	UnfreezeMembership()
	CancelMembership()
}

// MembershipController 处理会籍生命周期相关的请求
type MembershipController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewMembershipController 创建一个新的会籍控制器
func NewMembershipController(ctx *gin.Context, container *container.ServiceContainer) *MembershipController {
	return &MembershipController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleMembershipFunc 返回一个处理会籍请求的Gin处理函数
func HandleMembershipFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewMembershipController(ctx, container)

		switch method {
		case "purchaseMembership":
			controller.PurchaseMembership()
		case "getMembership":
			controller.GetMembership()
		case "renewMembership":
			controller.RenewMembership()
		case "freezeMembership":
			controller.FreezeMembership()
		case "unfreezeMembership":
			controller.UnfreezeMembership()
		case "cancelMembership":
			controller.CancelMembership()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// PurchaseMembershipRequest 表示购买会籍的请求体
type PurchaseMembershipRequest struct {
	MemberID  uint   `json:"member_id" binding:"required" example:"1"`
	PlanID    uint   `json:"plan_id" binding:"required" example:"1"`
	StartDate string `json:"start_date" example:"2026-09-01"` // 缺省为当天
}

// PurchaseMembership 购买会籍
// @Summary      购买会籍
// @Description  会员购买套餐，创建会籍与待支付账单
// @Tags         Membership
// @Accept       json
// @Produce      json
// @Param        request body PurchaseMembershipRequest true "购买信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /memberships [post]
// @Security     BearerAuth
func (c *MembershipController) PurchaseMembership() {
	var req PurchaseMembershipRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	var startDate time.Time
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			response.ParamError(c.Ctx, "无效的开始日期，格式应为YYYY-MM-DD")
			return
		}
		startDate = parsed
	}

	membershipService := c.Container.GetService("membership").(services.InterfaceMembershipService)
	result, err := membershipService.PurchaseMembership(req.MemberID, req.PlanID, startDate)
	if err != nil {
		switch err {
		case services.ErrMemberNotFound:
			response.Fail(c.Ctx, code.ErrMemberNotFound, nil)
		case services.ErrPlanNotFound:
			response.Fail(c.Ctx, code.ErrPlanNotFound, nil)
		case services.ErrPlanInactive:
			response.FailWithMessage(c.Ctx, code.ErrValidation, "套餐已下架", nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "购买会籍失败: "+err.Error(), nil)
		}
		return
	}

	response.Success(c.Ctx, result)
}

// GetMembership 获取会籍详情
// @Summary      获取会籍详情
// @Description  根据ID获取会籍及其套餐权益
// @Tags         Membership
// @Accept       json
// @Produce      json
// @Param        id path int true "会籍ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /memberships/{id} [get]
// @Security     BearerAuth
func (c *MembershipController) GetMembership() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	membershipService := c.Container.GetService("membership").(services.InterfaceMembershipService)
	membership, err := membershipService.GetMembershipByID(uint(id))
	if err != nil {
		if err == services.ErrMembershipNotFound {
			response.Fail(c.Ctx, code.ErrMembershipNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询会籍失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, membership)
}

// RenewMembership 续费会籍
// @Summary      续费会籍
// @Description  按原套餐续费，未到期从到期日顺延，已过期从当天起算
// @Tags         Membership
// @Accept       json
// @Produce      json
// @Param        id path int true "会籍ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /memberships/{id}/renew [post]
// @Security     BearerAuth
func (c *MembershipController) RenewMembership() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	membershipService := c.Container.GetService("membership").(services.InterfaceMembershipService)
	result, err := membershipService.RenewMembership(uint(id))
	if err != nil {
		if err == services.ErrMembershipNotFound {
			response.Fail(c.Ctx, code.ErrMembershipNotFound, nil)
			return
		}
		if err == services.ErrInvalidTransition {
			response.FailWithMessage(c.Ctx, code.ErrValidation, "已取消的会籍不能续费", nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "续费失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, result)
}

// FreezeMembershipRequest 表示冻结会籍的请求体
type FreezeMembershipRequest struct {
	Reason string `json:"reason" example:"出差三个月"`
}

// FreezeMembership 冻结会籍
// @Summary      冻结会籍
// @Description  冻结生效中的会籍，冻结期间不能进场和使用权益
// @Tags         Membership
// @Accept       json
// @Produce      json
// @Param        id path int true "会籍ID"
// @Param        request body FreezeMembershipRequest true "冻结原因"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /memberships/{id}/freeze [post]
// @Security     BearerAuth
func (c *MembershipController) FreezeMembership() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req FreezeMembershipRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	membershipService := c.Container.GetService("membership").(services.InterfaceMembershipService)
	membership, err := membershipService.FreezeMembership(uint(id), req.Reason)
	if err != nil {
		if err == services.ErrMembershipNotFound {
			response.Fail(c.Ctx, code.ErrMembershipNotFound, nil)
			return
		}
		if err == services.ErrInvalidTransition {
			response.FailWithMessage(c.Ctx, code.ErrValidation, "只有生效中的会籍可以冻结", nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "冻结会籍失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, membership)
}

// UnfreezeMembership 解冻会籍
// @Summary      解冻会籍
// @Description  解冻会籍，到期日按冻结时长顺延
// @Tags         Membership
// @Accept       json
// @Produce      json
// @Param        id path int true "会籍ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /memberships/{id}/unfreeze [post]
// @Security     BearerAuth
func (c *MembershipController) UnfreezeMembership() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	membershipService := c.Container.GetService("membership").(services.InterfaceMembershipService)
	membership, err := membershipService.UnfreezeMembership(uint(id))
	if err != nil {
		if err == services.ErrMembershipNotFound {
			response.Fail(c.Ctx, code.ErrMembershipNotFound, nil)
			return
		}
		if err == services.ErrMembershipNotFrozen {
			response.FailWithMessage(c.Ctx, code.ErrValidation, "会籍不在冻结状态", nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "解冻会籍失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, membership)
}

// CancelMembership 取消会籍
// @Summary      取消会籍
// @Description  取消会籍，终态不可恢复
// @Tags         Membership
// @Accept       json
// @Produce      json
// @Param        id path int true "会籍ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /memberships/{id}/cancel [post]
// @Security     BearerAuth
func (c *MembershipController) CancelMembership() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	membershipService := c.Container.GetService("membership").(services.InterfaceMembershipService)
	membership, err := membershipService.CancelMembership(uint(id))
	if err != nil {
		if err == services.ErrMembershipNotFound {
			response.Fail(c.Ctx, code.ErrMembershipNotFound, nil)
			return
		}
		if err == services.ErrInvalidTransition {
			response.FailWithMessage(c.Ctx, code.ErrValidation, "会籍已是取消状态", nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "取消会籍失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, membership)
}
