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

// InterfaceMemberController 定义会员控制器接口
type InterfaceMemberController interface {
	GetMembers()
	GetMember()
	CreateMember()
	UpdateMember()
	DeleteMember()
	EnrollFace()
	GetMemberMemberships()
	GetMemberInvoices()
}

// MemberController 处理会员相关的请求
type MemberController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewMemberController 创建一个新的会员控制器
func NewMemberController(ctx *gin.Context, container *container.ServiceContainer) *MemberController {
	return &MemberController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleMemberFunc 返回一个处理会员请求的Gin处理函数
func HandleMemberFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewMemberController(ctx, container)

		switch method {
		case "getMembers":
			controller.GetMembers()
		case "getMember":
			controller.GetMember()
		case "createMember":
			controller.CreateMember()
		case "updateMember":
			controller.UpdateMember()
		case "deleteMember":
			controller.DeleteMember()
		case "enrollFace":
			controller.EnrollFace()
		case "getMemberMemberships":
			controller.GetMemberMemberships()
		case "getMemberInvoices":
			controller.GetMemberInvoices()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetMembers 获取会员列表
// @Summary      获取会员列表
// @Description  分页获取会员列表，可按分店过滤
// @Tags         Member
// @Accept       json
// @Produce      json
// @Param        branch_id query int false "分店ID"
// @Param        pageNum query int false "页码，默认为1"
// @Param        pageSize query int false "每页条数，默认为20"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /members [get]
// @Security     BearerAuth
func (c *MemberController) GetMembers() {
	branchID, _ := strconv.ParseUint(c.Ctx.DefaultQuery("branch_id", "0"), 10, 32)

	var page models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&page); err != nil {
		response.ParamError(c.Ctx, "无效的分页参数")
		return
	}

	memberService := c.Container.GetService("member").(services.InterfaceMemberService)
	members, total, err := memberService.GetMembers(uint(branchID), page)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询会员列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total": total,
		"data":  members,
	})
}

// GetMember 获取会员详情
// @Summary      获取会员详情
// @Description  根据ID获取会员及其会籍信息
// @Tags         Member
// @Accept       json
// @Produce      json
// @Param        id path int true "会员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /members/{id} [get]
// @Security     BearerAuth
func (c *MemberController) GetMember() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	memberService := c.Container.GetService("member").(services.InterfaceMemberService)
	member, err := memberService.GetMemberByID(uint(id))
	if err != nil {
		if err == services.ErrMemberNotFound {
			response.Fail(c.Ctx, code.ErrMemberNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询会员失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, member)
}

// CreateMemberRequest 表示创建会员的请求体
type CreateMemberRequest struct {
	BranchID    uint   `json:"branch_id" binding:"required" example:"1"`
	Name        string `json:"name" binding:"required" example:"张伟"`
	Phone       string `json:"phone" binding:"required" example:"9100000100"`
	Email       string `json:"email" example:"zhangwei@example.com"`
	Gender      string `json:"gender" example:"male"`
	DateOfBirth string `json:"date_of_birth" example:"1995-06-15"`
}

// CreateMember 创建会员
// @Summary      创建会员
// @Description  创建一个新的会员，自动生成会员号与人员标识
// @Tags         Member
// @Accept       json
// @Produce      json
// @Param        request body CreateMemberRequest true "会员信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /members [post]
// @Security     BearerAuth
func (c *MemberController) CreateMember() {
	var req CreateMemberRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	member := &models.Member{
		BranchID: req.BranchID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Gender:   req.Gender,
	}

	memberService := c.Container.GetService("member").(services.InterfaceMemberService)
	if err := memberService.CreateMember(member); err != nil {
		if err == services.ErrBranchNotFound {
			response.Fail(c.Ctx, code.ErrBranchNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrValidation, "创建会员失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"id":          member.ID,
		"member_code": member.MemberCode,
		"person_uuid": member.PersonUUID,
		"name":        member.Name,
		"phone":       member.Phone,
		"branch_id":   member.BranchID,
		"created_at":  member.CreatedAt,
	})
}

// UpdateMemberRequest 表示更新会员的请求体
type UpdateMemberRequest struct {
	Name   string `json:"name" example:"李娜"`
	Phone  string `json:"phone" example:"9100000101"`
	Email  string `json:"email" example:"lina@example.com"`
	Gender string `json:"gender" example:"female"`
}

// UpdateMember 更新会员信息
// @Summary      更新会员
// @Description  更新会员资料，已录入人脸的会员变更会下发到分店终端
// @Tags         Member
// @Accept       json
// @Produce      json
// @Param        id path int true "会员ID"
// @Param        request body UpdateMemberRequest true "更新的会员信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /members/{id} [put]
// @Security     BearerAuth
func (c *MemberController) UpdateMember() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdateMemberRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Gender != "" {
		updates["gender"] = req.Gender
	}

	memberService := c.Container.GetService("member").(services.InterfaceMemberService)
	member, err := memberService.UpdateMember(uint(id), updates)
	if err != nil {
		if err == services.ErrMemberNotFound {
			response.Fail(c.Ctx, code.ErrMemberNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新会员失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, member)
}

// DeleteMember 删除会员
// @Summary      删除会员
// @Description  删除指定会员，并从分店终端移除人脸
// @Tags         Member
// @Accept       json
// @Produce      json
// @Param        id path int true "会员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /members/{id} [delete]
// @Security     BearerAuth
func (c *MemberController) DeleteMember() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	memberService := c.Container.GetService("member").(services.InterfaceMemberService)
	if err := memberService.DeleteMember(uint(id)); err != nil {
		if err == services.ErrMemberNotFound {
			response.Fail(c.Ctx, code.ErrMemberNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除会员失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// EnrollFaceRequest 表示人脸录入完成的请求体
type EnrollFaceRequest struct {
	WiegandCode string `json:"wiegand_code" example:"0012345678"`
}

// EnrollFace 标记会员完成人脸录入
// @Summary      人脸录入完成
// @Description  前台在终端完成会员人脸采集后调用，触发花名册下发
// @Tags         Member
// @Accept       json
// @Produce      json
// @Param        id path int true "会员ID"
// @Param        request body EnrollFaceRequest true "录入信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /members/{id}/enroll-face [post]
// @Security     BearerAuth
func (c *MemberController) EnrollFace() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req EnrollFaceRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	memberService := c.Container.GetService("member").(services.InterfaceMemberService)
	member, err := memberService.EnrollFace(uint(id), req.WiegandCode)
	if err != nil {
		if err == services.ErrMemberNotFound {
			response.Fail(c.Ctx, code.ErrMemberNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "人脸录入登记失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, member)
}

// GetMemberMemberships 获取会员的会籍列表
// @Summary      获取会员的会籍列表
// @Description  获取指定会员的全部会籍（含历史）
// @Tags         Member
// @Accept       json
// @Produce      json
// @Param        id path int true "会员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /members/{id}/memberships [get]
// @Security     BearerAuth
func (c *MemberController) GetMemberMemberships() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	membershipService := c.Container.GetService("membership").(services.InterfaceMembershipService)
	memberships, err := membershipService.GetMemberMemberships(uint(id))
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询会籍列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, memberships)
}

// GetMemberInvoices 获取会员的账单列表
// @Summary      获取会员的账单列表
// @Description  获取指定会员的全部账单
// @Tags         Member
// @Accept       json
// @Produce      json
// @Param        id path int true "会员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /members/{id}/invoices [get]
// @Security     BearerAuth
func (c *MemberController) GetMemberInvoices() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	paymentService := c.Container.GetService("payment").(services.InterfacePaymentService)
	invoices, err := paymentService.GetMemberInvoices(uint(id))
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询账单列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, invoices)
}
