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

// InterfaceBookingController 定义预约控制器接口
type InterfaceBookingController interface {
	CreateSlot()
	GetSlots()
	GetSlot()
	BookSlot()
	CancelBooking()
	CompleteBooking()
	GetMemberBookings()
}

// BookingController 处理权益时段预约相关的请求
type BookingController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewBookingController 创建一个新的预约控制器
func NewBookingController(ctx *gin.Context, container *container.ServiceContainer) *BookingController {
	return &BookingController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleBookingFunc 返回一个处理预约请求的Gin处理函数
func HandleBookingFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewBookingController(ctx, container)

		switch method {
		case "createSlot":
			controller.CreateSlot()
		case "getSlots":
			controller.GetSlots()
		case "getSlot":
			controller.GetSlot()
		case "bookSlot":
			controller.BookSlot()
		case "cancelBooking":
			controller.CancelBooking()
		case "completeBooking":
			controller.CompleteBooking()
		case "getMemberBookings":
			controller.GetMemberBookings()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// CreateSlotRequest 表示创建时段的请求体
type CreateSlotRequest struct {
	BranchID    uint   `json:"branch_id" binding:"required" example:"1"`
	BenefitType string `json:"benefit_type" binding:"required" example:"sauna_session"`
	SlotDate    string `json:"slot_date" binding:"required" example:"2026-09-05"`
	StartTime   string `json:"start_time" binding:"required" example:"18:00"`
	EndTime     string `json:"end_time" binding:"required" example:"19:00"`
	Capacity    int    `json:"capacity" binding:"required" example:"6"`
}

// CreateSlot 创建可约时段
// @Summary      创建可约时段
// @Description  为分店某项权益开放一个限定容量的预约时段
// @Tags         Booking
// @Accept       json
// @Produce      json
// @Param        request body CreateSlotRequest true "时段信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /slots [post]
// @Security     BearerAuth
func (c *BookingController) CreateSlot() {
	var req CreateSlotRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	slotDate, err := time.Parse("2006-01-02", req.SlotDate)
	if err != nil {
		response.ParamError(c.Ctx, "无效的日期格式，应为 YYYY-MM-DD")
		return
	}

	slot := &models.BenefitSlot{
		BranchID:    req.BranchID,
		BenefitType: req.BenefitType,
		SlotDate:    slotDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
	}

	bookingService := c.Container.GetService("booking").(services.InterfaceBookingService)
	if err := bookingService.CreateSlot(slot); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "创建时段失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, slot)
}

// GetSlots 获取时段列表
// @Summary      获取时段列表
// @Description  按分店、权益类型与日期过滤查询可约时段
// @Tags         Booking
// @Accept       json
// @Produce      json
// @Param        branch_id query int false "分店ID"
// @Param        benefit_type query string false "权益类型"
// @Param        date query string false "日期 YYYY-MM-DD"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /slots [get]
// @Security     BearerAuth
func (c *BookingController) GetSlots() {
	branchID, _ := strconv.ParseUint(c.Ctx.DefaultQuery("branch_id", "0"), 10, 32)
	benefitType := c.Ctx.Query("benefit_type")

	var datePtr *time.Time
	if dateStr := c.Ctx.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			response.ParamError(c.Ctx, "无效的日期格式，应为 YYYY-MM-DD")
			return
		}
		datePtr = &date
	}

	bookingService := c.Container.GetService("booking").(services.InterfaceBookingService)
	slots, err := bookingService.GetSlots(uint(branchID), benefitType, datePtr)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询时段失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, slots)
}

// GetSlot 获取时段详情
// @Summary      获取时段详情
// @Description  根据ID获取时段及其预约情况
// @Tags         Booking
// @Accept       json
// @Produce      json
// @Param        id path int true "时段ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /slots/{id} [get]
// @Security     BearerAuth
func (c *BookingController) GetSlot() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	bookingService := c.Container.GetService("booking").(services.InterfaceBookingService)
	slot, err := bookingService.GetSlotByID(uint(id))
	if err != nil {
		if err == services.ErrSlotNotFound {
			response.Fail(c.Ctx, code.ErrSlotNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询时段失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, slot)
}

// BookSlotRequest 表示预约时段的请求体。
// 操作主体取自令牌身份，不接受请求体指定。
type BookSlotRequest struct {
	MemberID     uint   `json:"member_id" binding:"required" example:"10"`
	MembershipID uint   `json:"membership_id" binding:"required" example:"3"`
	Notes        string `json:"notes" example:"会员App自助预约"`
}

// BookSlot 预约时段
// @Summary      预约时段
// @Description  校验权益余额并占用时段名额，同时扣减权益次数
// @Tags         Booking
// @Accept       json
// @Produce      json
// @Param        id path int true "时段ID"
// @Param        request body BookSlotRequest true "预约信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /slots/{id}/book [post]
// @Security     BearerAuth
func (c *BookingController) BookSlot() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req BookSlotRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	bookingService := c.Container.GetService("booking").(services.InterfaceBookingService)
	booking, err := bookingService.BookSlot(uint(id), req.MemberID, req.MembershipID, ActingPrincipal(c.Ctx), req.Notes)
	if err != nil {
		switch err {
		case services.ErrSlotNotFound:
			response.Fail(c.Ctx, code.ErrSlotNotFound, nil)
		case services.ErrSlotFull:
			response.Fail(c.Ctx, code.ErrSlotFull, nil)
		case services.ErrMembershipNotFound:
			response.Fail(c.Ctx, code.ErrMembershipNotFound, nil)
		case services.ErrMembershipNotActive:
			response.Fail(c.Ctx, code.ErrMembershipNotActive, nil)
		case services.ErrBenefitNotInPlan:
			response.Fail(c.Ctx, code.ErrBenefitNotInPlan, nil)
		case services.ErrBenefitExhausted:
			response.Fail(c.Ctx, code.ErrBenefitExhausted, nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "预约失败: "+err.Error(), nil)
		}
		return
	}

	response.Success(c.Ctx, booking)
}

// CancelBookingRequest 表示取消预约的请求体
type CancelBookingRequest struct {
	Reason string `json:"reason" example:"临时有事"`
}

// CancelBooking 取消预约
// @Summary      取消预约
// @Description  取消未完成的预约并释放时段名额
// @Tags         Booking
// @Accept       json
// @Produce      json
// @Param        id path int true "预约ID"
// @Param        request body CancelBookingRequest false "取消原因"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /bookings/{id}/cancel [post]
// @Security     BearerAuth
func (c *BookingController) CancelBooking() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req CancelBookingRequest
	_ = c.Ctx.ShouldBindJSON(&req)

	bookingService := c.Container.GetService("booking").(services.InterfaceBookingService)
	booking, err := bookingService.CancelBooking(uint(id), req.Reason)
	if err != nil {
		switch err {
		case services.ErrBookingNotFound:
			response.Fail(c.Ctx, code.ErrBookingNotFound, nil)
		case services.ErrBookingNotCancellable:
			response.Fail(c.Ctx, code.ErrBookingNotCancellable, nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "取消预约失败: "+err.Error(), nil)
		}
		return
	}

	response.Success(c.Ctx, booking)
}

// CompleteBooking 完成预约
// @Summary      完成预约
// @Description  会员到场核销后将预约标记为已完成
// @Tags         Booking
// @Accept       json
// @Produce      json
// @Param        id path int true "预约ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /bookings/{id}/complete [post]
// @Security     BearerAuth
func (c *BookingController) CompleteBooking() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	bookingService := c.Container.GetService("booking").(services.InterfaceBookingService)
	if err := bookingService.CompleteBooking(uint(id)); err != nil {
		if err == services.ErrBookingNotFound {
			response.Fail(c.Ctx, code.ErrBookingNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "核销预约失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// GetMemberBookings 获取会员预约列表
// @Summary      获取会员预约列表
// @Description  查询指定会员的全部预约记录
// @Tags         Booking
// @Accept       json
// @Produce      json
// @Param        id path int true "会员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /members/{id}/bookings [get]
// @Security     BearerAuth
func (c *BookingController) GetMemberBookings() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	bookingService := c.Container.GetService("booking").(services.InterfaceBookingService)
	bookings, err := bookingService.GetMemberBookings(uint(id))
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询预约记录失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, bookings)
}
