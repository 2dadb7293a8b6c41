package controllers

import (
	"strconv"
	"time"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/domain/services"
	"gymcore-http-service/internal/domain/services/container"
	"gymcore-http-service/internal/error/code"
	"gymcore-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceTrainingController 定义私教控制器接口
type InterfaceTrainingController interface {
	GetPackages()
	GetPackage()
	CreatePackage()
	UseSession()
	CancelPackage()
}

// TrainingController 处理私教课包相关的请求
type TrainingController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewTrainingController 创建一个新的私教控制器
func NewTrainingController(ctx *gin.Context, container *container.ServiceContainer) *TrainingController {
	return &TrainingController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleTrainingFunc 返回一个处理私教请求的Gin处理函数
func HandleTrainingFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewTrainingController(ctx, container)

		switch method {
		case "getPackages":
			controller.GetPackages()
		case "getPackage":
			controller.GetPackage()
		case "createPackage":
			controller.CreatePackage()
		case "useSession":
			controller.UseSession()
		case "cancelPackage":
			controller.CancelPackage()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetPackages 获取课包列表
// @Summary      获取课包列表
// @Description  查询私教课包，可按会员或教练过滤
// @Tags         Training
// @Accept       json
// @Produce      json
// @Param        member_id query int false "会员ID"
// @Param        trainer_id query int false "教练ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /training/packages [get]
// @Security     BearerAuth
func (c *TrainingController) GetPackages() {
	memberID, _ := strconv.ParseUint(c.Ctx.DefaultQuery("member_id", "0"), 10, 32)
	trainerID, _ := strconv.ParseUint(c.Ctx.DefaultQuery("trainer_id", "0"), 10, 32)

	trainingService := c.Container.GetService("training").(services.InterfaceTrainingService)
	packages, err := trainingService.GetPackages(uint(memberID), uint(trainerID))
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询课包列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, packages)
}

// GetPackage 获取课包详情
// @Summary      获取课包详情
// @Description  根据ID获取课包及其消课记录
// @Tags         Training
// @Accept       json
// @Produce      json
// @Param        id path int true "课包ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /training/packages/{id} [get]
// @Security     BearerAuth
func (c *TrainingController) GetPackage() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	trainingService := c.Container.GetService("training").(services.InterfaceTrainingService)
	pkg, err := trainingService.GetPackageByID(uint(id))
	if err != nil {
		if err == services.ErrPackageNotFound {
			response.NotFound(c.Ctx, "课包不存在")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询课包失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, pkg)
}

// CreatePackageRequest 表示售卖课包的请求体
type CreatePackageRequest struct {
	MemberID      uint   `json:"member_id" binding:"required" example:"10"`
	TrainerID     uint   `json:"trainer_id" binding:"required" example:"5"`
	BranchID      uint   `json:"branch_id" binding:"required" example:"1"`
	Name          string `json:"name" binding:"required" example:"12节减脂私教"`
	TotalSessions int    `json:"total_sessions" binding:"required" example:"12"`
	PricePaise    int64  `json:"price_paise" binding:"required" example:"1800000"`
	ExpiresOn     string `json:"expires_on" example:"2027-03-01"` // 可选，YYYY-MM-DD
}

// CreatePackage 售卖课包
// @Summary      售卖课包
// @Description  为会员开通私教课包并生成待支付账单
// @Tags         Training
// @Accept       json
// @Produce      json
// @Param        request body CreatePackageRequest true "课包信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /training/packages [post]
// @Security     BearerAuth
func (c *TrainingController) CreatePackage() {
	var req CreatePackageRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	pkg := &models.TrainingPackage{
		MemberID:      req.MemberID,
		TrainerID:     req.TrainerID,
		BranchID:      req.BranchID,
		Name:          req.Name,
		TotalSessions: req.TotalSessions,
		PricePaise:    req.PricePaise,
	}
	if req.ExpiresOn != "" {
		expiresOn, err := time.Parse("2006-01-02", req.ExpiresOn)
		if err != nil {
			response.ParamError(c.Ctx, "无效的过期日期格式，应为 YYYY-MM-DD")
			return
		}
		pkg.ExpiresOn = &expiresOn
	}

	trainingService := c.Container.GetService("training").(services.InterfaceTrainingService)
	invoice, err := trainingService.CreatePackage(pkg)
	if err != nil {
		switch err {
		case services.ErrMemberNotFound:
			response.Fail(c.Ctx, code.ErrMemberNotFound, nil)
		case services.ErrTrainerNotFound:
			response.FailWithMessage(c.Ctx, code.ErrValidation, "教练不存在或岗位不符", nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "售卖课包失败: "+err.Error(), nil)
		}
		return
	}

	response.Success(c.Ctx, gin.H{
		"package": pkg,
		"invoice": invoice,
	})
}

// UseSessionRequest 表示消课的请求体。
// 操作主体取自令牌身份，不接受请求体指定。
type UseSessionRequest struct {
	TrainerID   uint   `json:"trainer_id" binding:"required" example:"5"`
	SessionDate string `json:"session_date" example:"2026-09-01"`
	Notes       string `json:"notes" example:"胸背训练"`
}

// UseSession 消课
// @Summary      消课
// @Description  扣减一节课时并登记上课记录，课时用尽自动完结课包
// @Tags         Training
// @Accept       json
// @Produce      json
// @Param        id path int true "课包ID"
// @Param        request body UseSessionRequest true "消课信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /training/packages/{id}/use [post]
// @Security     BearerAuth
func (c *TrainingController) UseSession() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UseSessionRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	sessionDate := time.Now()
	if req.SessionDate != "" {
		sessionDate, err = time.Parse("2006-01-02", req.SessionDate)
		if err != nil {
			response.ParamError(c.Ctx, "无效的上课日期格式，应为 YYYY-MM-DD")
			return
		}
	}

	trainingService := c.Container.GetService("training").(services.InterfaceTrainingService)
	session, err := trainingService.UseSession(uint(id), req.TrainerID, sessionDate, ActingPrincipal(c.Ctx), req.Notes)
	if err != nil {
		switch err {
		case services.ErrPackageNotFound:
			response.NotFound(c.Ctx, "课包不存在")
		case services.ErrPackageNotActive:
			response.FailWithMessage(c.Ctx, code.ErrValidation, "课包不在有效状态", nil)
		case services.ErrPackageExhausted:
			response.FailWithMessage(c.Ctx, code.ErrValidation, "课包课时已用完", nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "消课失败: "+err.Error(), nil)
		}
		return
	}

	response.Success(c.Ctx, session)
}

// CancelPackage 取消课包
// @Summary      取消课包
// @Description  取消尚未消课的课包
// @Tags         Training
// @Accept       json
// @Produce      json
// @Param        id path int true "课包ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /training/packages/{id} [delete]
// @Security     BearerAuth
func (c *TrainingController) CancelPackage() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	trainingService := c.Container.GetService("training").(services.InterfaceTrainingService)
	if err := trainingService.CancelPackage(uint(id)); err != nil {
		switch err {
		case services.ErrPackageNotFound:
			response.NotFound(c.Ctx, "课包不存在")
		case services.ErrPackageHasSessions:
			response.FailWithMessage(c.Ctx, code.ErrValidation, "课包已有消课记录，不可取消", nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "取消课包失败: "+err.Error(), nil)
		}
		return
	}

	response.Success(c.Ctx, nil)
}
