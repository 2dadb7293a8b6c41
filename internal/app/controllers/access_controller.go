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

// InterfaceAccessController 定义门禁控制器接口
type InterfaceAccessController interface {
	HandleAccessEvent()
	GetFullRoster()
	PullSyncItems()
	AckSyncItems()
	Heartbeat()
	GetAccessEvents()
}

// AccessController 处理门禁终端上报与花名册同步请求
type AccessController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAccessController 创建一个新的门禁控制器
func NewAccessController(ctx *gin.Context, container *container.ServiceContainer) *AccessController {
	return &AccessController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleAccessFunc 返回一个处理门禁请求的Gin处理函数
func HandleAccessFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAccessController(ctx, container)

		switch method {
		case "accessEvent":
			controller.HandleAccessEvent()
		case "fullRoster":
			controller.GetFullRoster()
		case "pullSync":
			controller.PullSyncItems()
		case "ackSync":
			controller.AckSyncItems()
		case "heartbeat":
			controller.Heartbeat()
		case "getAccessEvents":
			controller.GetAccessEvents()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// AccessEventRequest 表示终端上报的识别事件
type AccessEventRequest struct {
	DeviceSerial string  `json:"device_serial" binding:"required" example:"GA-2024-00017"`
	PersonUUID   string  `json:"person_uuid" example:"8f14e45f-ea3a-4c2b-9d6c-0f1a2b3c4d5e"`
	Confidence   float64 `json:"confidence" example:"0.98"`
	Timestamp    int64   `json:"timestamp" example:"1756700000"`
}

// HandleAccessEvent 处理识别事件
// @Summary      处理识别事件
// @Description  终端上报人脸识别结果，服务端裁决放行或拒绝并返回LED指令
// @Tags         Access
// @Accept       json
// @Produce      json
// @Param        request body AccessEventRequest true "识别事件"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /access/events [post]
func (c *AccessController) HandleAccessEvent() {
	var req AccessEventRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	ts := time.Now()
	if req.Timestamp > 0 {
		ts = time.Unix(req.Timestamp, 0)
	}

	accessService := c.Container.GetService("access").(services.InterfaceAccessService)
	decision, err := accessService.HandleAccessEvent(req.DeviceSerial, req.PersonUUID, req.Confidence, ts)
	if err != nil {
		if err == services.ErrDeviceNotFound {
			response.Fail(c.Ctx, code.ErrDeviceNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "处理识别事件失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, decision)
}

// GetFullRoster 获取全量花名册
// @Summary      获取全量花名册
// @Description  终端首次上线或补全时拉取所在分店的全量人员名单
// @Tags         Access
// @Accept       json
// @Produce      json
// @Param        serial path string true "设备序列号"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /access/devices/{serial}/roster [get]
func (c *AccessController) GetFullRoster() {
	serial := c.Ctx.Param("serial")
	if serial == "" {
		response.ParamError(c.Ctx, "设备序列号不能为空")
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	roster, err := deviceService.GetFullRoster(serial)
	if err != nil {
		if err == services.ErrDeviceNotFound {
			response.Fail(c.Ctx, code.ErrDeviceNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询花名册失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"device_serial": serial,
		"count":         len(roster),
		"roster":        roster,
	})
}

// PullSyncItems 拉取增量同步项
// @Summary      拉取增量同步项
// @Description  终端轮询待下发的花名册增量变更
// @Tags         Access
// @Accept       json
// @Produce      json
// @Param        serial path string true "设备序列号"
// @Param        limit query int false "最大条数" default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /access/devices/{serial}/sync [get]
func (c *AccessController) PullSyncItems() {
	serial := c.Ctx.Param("serial")
	if serial == "" {
		response.ParamError(c.Ctx, "设备序列号不能为空")
		return
	}

	limit, err := strconv.Atoi(c.Ctx.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	items, err := deviceService.PullSyncItems(serial, limit)
	if err != nil {
		if err == services.ErrDeviceNotFound {
			response.Fail(c.Ctx, code.ErrDeviceNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "拉取同步项失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"count": len(items),
		"items": items,
	})
}

// AckSyncRequest 表示终端确认同步结果的请求体
type AckSyncRequest struct {
	ItemIDs []uint `json:"item_ids" binding:"required"`
	Success bool   `json:"success"`
}

// AckSyncItems 确认同步结果
// @Summary      确认同步结果
// @Description  终端回执已处理的同步项，成功标记完成，失败重新排队
// @Tags         Access
// @Accept       json
// @Produce      json
// @Param        serial path string true "设备序列号"
// @Param        request body AckSyncRequest true "回执内容"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /access/devices/{serial}/sync/ack [post]
func (c *AccessController) AckSyncItems() {
	serial := c.Ctx.Param("serial")
	if serial == "" {
		response.ParamError(c.Ctx, "设备序列号不能为空")
		return
	}

	var req AckSyncRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	if err := deviceService.AckSyncItems(serial, req.ItemIDs, req.Success); err != nil {
		if err == services.ErrDeviceNotFound {
			response.Fail(c.Ctx, code.ErrDeviceNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "确认同步项失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// HeartbeatRequest 表示终端心跳的请求体
type HeartbeatRequest struct {
	DeviceSerial    string `json:"device_serial" binding:"required" example:"GA-2024-00017"`
	FirmwareVersion string `json:"firmware_version" example:"2.4.1"`
}

// Heartbeat 处理设备心跳
// @Summary      处理设备心跳
// @Description  终端定时上报在线状态，刷新最近心跳时间
// @Tags         Access
// @Accept       json
// @Produce      json
// @Param        request body HeartbeatRequest true "心跳内容"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /access/heartbeat [post]
func (c *AccessController) Heartbeat() {
	var req HeartbeatRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	if err := deviceService.Heartbeat(req.DeviceSerial, models.DeviceStatusOnline); err != nil {
		if err == services.ErrDeviceNotFound {
			response.Fail(c.Ctx, code.ErrDeviceNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "处理心跳失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// GetAccessEvents 获取门禁事件列表
// @Summary      获取门禁事件列表
// @Description  分页查询门禁识别事件，可按设备、会员过滤
// @Tags         Access
// @Accept       json
// @Produce      json
// @Param        device_id query int false "设备ID"
// @Param        member_id query int false "会员ID"
// @Param        pageNum query int false "页码" default(1)
// @Param        pageSize query int false "每页数量" default(10)
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /access/events [get]
// @Security     BearerAuth
func (c *AccessController) GetAccessEvents() {
	deviceID, _ := strconv.ParseUint(c.Ctx.DefaultQuery("device_id", "0"), 10, 32)
	memberID, _ := strconv.ParseUint(c.Ctx.DefaultQuery("member_id", "0"), 10, 32)

	var page models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&page); err != nil {
		response.ParamError(c.Ctx, "无效的分页参数")
		return
	}

	accessService := c.Container.GetService("access").(services.InterfaceAccessService)
	events, total, err := accessService.GetAccessEvents(uint(deviceID), uint(memberID), page)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询门禁事件失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total": total,
		"data":  events,
	})
}
