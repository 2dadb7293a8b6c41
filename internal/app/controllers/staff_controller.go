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

// InterfaceStaffController 定义员工控制器接口
type InterfaceStaffController interface {
	GetStaffList()
	GetStaff()
	CreateStaff()
	UpdateStaff()
	DeactivateStaff()
	GetAttendance()
	CheckOut()
}

// StaffController 处理员工管理请求
type StaffController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewStaffController 创建一个新的员工控制器
func NewStaffController(ctx *gin.Context, container *container.ServiceContainer) *StaffController {
	return &StaffController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleStaffFunc 返回一个处理员工请求的Gin处理函数
func HandleStaffFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewStaffController(ctx, container)

		switch method {
		case "getStaffList":
			controller.GetStaffList()
		case "getStaff":
			controller.GetStaff()
		case "createStaff":
			controller.CreateStaff()
		case "updateStaff":
			controller.UpdateStaff()
		case "deactivateStaff":
			controller.DeactivateStaff()
		case "getAttendance":
			controller.GetAttendance()
		case "checkOut":
			controller.CheckOut()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetStaffList 获取员工列表
// @Summary      获取员工列表
// @Description  分页查询员工，可按分店与岗位过滤
// @Tags         Staff
// @Accept       json
// @Produce      json
// @Param        branch_id query int false "分店ID"
// @Param        role query string false "岗位 trainer/front_desk/manager/maintenance"
// @Param        pageNum query int false "页码" default(1)
// @Param        pageSize query int false "每页数量" default(20)
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /staff [get]
// @Security     BearerAuth
func (c *StaffController) GetStaffList() {
	branchID, _ := strconv.ParseUint(c.Ctx.DefaultQuery("branch_id", "0"), 10, 32)
	role := c.Ctx.Query("role")

	var page models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&page); err != nil {
		response.ParamError(c.Ctx, "无效的分页参数")
		return
	}

	staffService := c.Container.GetService("staff").(services.InterfaceStaffService)
	staff, total, err := staffService.GetStaffList(uint(branchID), role, page)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询员工列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total": total,
		"data":  staff,
	})
}

// GetStaff 获取员工详情
// @Summary      获取员工详情
// @Description  根据ID获取员工信息
// @Tags         Staff
// @Accept       json
// @Produce      json
// @Param        id path int true "员工ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /staff/{id} [get]
// @Security     BearerAuth
func (c *StaffController) GetStaff() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	staffService := c.Container.GetService("staff").(services.InterfaceStaffService)
	staff, err := staffService.GetStaffByID(uint(id))
	if err != nil {
		if err == services.ErrStaffNotFound {
			response.Fail(c.Ctx, code.ErrStaffNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询员工失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, staff)
}

// CreateStaffRequest 表示创建员工的请求体
type CreateStaffRequest struct {
	BranchID    uint   `json:"branch_id" binding:"required" example:"1"`
	Role        string `json:"role" binding:"required" example:"trainer"`
	Name        string `json:"name" binding:"required" example:"王强"`
	Phone       string `json:"phone" binding:"required" example:"13800001111"`
	Email       string `json:"email" example:"wangqiang@example.com"`
	Username    string `json:"username" example:"wangqiang"`
	Password    string `json:"password" example:"secret123"`
	SalaryPaise int64  `json:"salary_paise" example:"3000000"`
}

// CreateStaff 创建员工
// @Summary      创建员工
// @Description  录入新员工，同时生成门禁人员标识并入队花名册同步
// @Tags         Staff
// @Accept       json
// @Produce      json
// @Param        request body CreateStaffRequest true "员工信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /staff [post]
// @Security     BearerAuth
func (c *StaffController) CreateStaff() {
	var req CreateStaffRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	staff := &models.Staff{
		BranchID:    req.BranchID,
		Role:        models.StaffRole(req.Role),
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Username:    req.Username,
		SalaryPaise: req.SalaryPaise,
	}

	staffService := c.Container.GetService("staff").(services.InterfaceStaffService)
	if err := staffService.CreateStaff(staff, req.Password); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "创建员工失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, staff)
}

// UpdateStaffRequest 表示更新员工的请求体
type UpdateStaffRequest struct {
	Name        string `json:"name" example:"王强"`
	Phone       string `json:"phone" example:"13800002222"`
	Email       string `json:"email" example:"wq@example.com"`
	Role        string `json:"role" example:"manager"`
	SalaryPaise *int64 `json:"salary_paise" example:"3500000"`
}

// UpdateStaff 更新员工
// @Summary      更新员工
// @Description  更新员工信息，姓名变更会同步到门禁花名册
// @Tags         Staff
// @Accept       json
// @Produce      json
// @Param        id path int true "员工ID"
// @Param        request body UpdateStaffRequest true "更新的员工信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /staff/{id} [put]
// @Security     BearerAuth
func (c *StaffController) UpdateStaff() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdateStaffRequest
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
	if req.Role != "" {
		updates["role"] = req.Role
	}
	if req.SalaryPaise != nil {
		updates["salary_paise"] = *req.SalaryPaise
	}

	staffService := c.Container.GetService("staff").(services.InterfaceStaffService)
	staff, err := staffService.UpdateStaff(uint(id), updates)
	if err != nil {
		if err == services.ErrStaffNotFound {
			response.Fail(c.Ctx, code.ErrStaffNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新员工失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, staff)
}

// DeactivateStaff 停用员工
// @Summary      停用员工
// @Description  停用员工账号并从门禁花名册移除
// @Tags         Staff
// @Accept       json
// @Produce      json
// @Param        id path int true "员工ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /staff/{id} [delete]
// @Security     BearerAuth
func (c *StaffController) DeactivateStaff() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	staffService := c.Container.GetService("staff").(services.InterfaceStaffService)
	if err := staffService.DeactivateStaff(uint(id)); err != nil {
		if err == services.ErrStaffNotFound {
			response.Fail(c.Ctx, code.ErrStaffNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "停用员工失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// GetAttendance 获取员工考勤记录
// @Summary      获取员工考勤记录
// @Description  查询员工的考勤记录，可按日期范围过滤
// @Tags         Staff
// @Accept       json
// @Produce      json
// @Param        id path int true "员工ID"
// @Param        from query string false "开始日期 YYYY-MM-DD"
// @Param        to query string false "结束日期 YYYY-MM-DD"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /staff/{id}/attendance [get]
// @Security     BearerAuth
func (c *StaffController) GetAttendance() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	from := c.Ctx.Query("from")
	to := c.Ctx.Query("to")

	staffService := c.Container.GetService("staff").(services.InterfaceStaffService)
	records, err := staffService.GetAttendance(uint(id), from, to)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询考勤记录失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, records)
}

// CheckOut 员工签退
// @Summary      员工签退
// @Description  为员工补记当日签退时间（签到由门禁识别自动生成）
// @Tags         Staff
// @Accept       json
// @Produce      json
// @Param        id path int true "员工ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /staff/{id}/checkout [post]
// @Security     BearerAuth
func (c *StaffController) CheckOut() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	staffService := c.Container.GetService("staff").(services.InterfaceStaffService)
	attendance, err := staffService.CheckOut(uint(id))
	if err != nil {
		if err == services.ErrStaffNotFound {
			response.Fail(c.Ctx, code.ErrStaffNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrValidation, "签退失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, attendance)
}
