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

// InterfaceDeviceController 定义设备控制器接口
type InterfaceDeviceController interface {
	GetDevices()
	GetDevice()
	CreateDevice()
	UpdateDevice()
	DeleteDevice()
	RemoteUnlock()
}

// DeviceController 处理门禁终端管理请求
type DeviceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDeviceController 创建一个新的设备控制器
func NewDeviceController(ctx *gin.Context, container *container.ServiceContainer) *DeviceController {
	return &DeviceController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleDeviceFunc 返回一个处理设备请求的Gin处理函数
func HandleDeviceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDeviceController(ctx, container)

		switch method {
		case "getDevices":
			controller.GetDevices()
		case "getDevice":
			controller.GetDevice()
		case "createDevice":
			controller.CreateDevice()
		case "updateDevice":
			controller.UpdateDevice()
		case "deleteDevice":
			controller.DeleteDevice()
		case "remoteUnlock":
			controller.RemoteUnlock()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetDevices 获取设备列表
// @Summary      获取设备列表
// @Description  获取门禁终端列表，可按分店过滤
// @Tags         Device
// @Accept       json
// @Produce      json
// @Param        branch_id query int false "分店ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /devices [get]
// @Security     BearerAuth
func (c *DeviceController) GetDevices() {
	branchID, _ := strconv.ParseUint(c.Ctx.DefaultQuery("branch_id", "0"), 10, 32)

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)

	var (
		devices []models.AccessDevice
		err     error
	)
	if branchID > 0 {
		devices, err = deviceService.GetDevicesByBranch(uint(branchID))
	} else {
		devices, err = deviceService.GetAllDevices()
	}
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询设备列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, devices)
}

// GetDevice 获取设备详情
// @Summary      获取设备详情
// @Description  根据ID获取门禁终端信息
// @Tags         Device
// @Accept       json
// @Produce      json
// @Param        id path int true "设备ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /devices/{id} [get]
// @Security     BearerAuth
func (c *DeviceController) GetDevice() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	device, err := deviceService.GetDeviceByID(uint(id))
	if err != nil {
		if err == services.ErrDeviceNotFound {
			response.Fail(c.Ctx, code.ErrDeviceNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询设备失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, device)
}

// CreateDeviceRequest 表示创建设备的请求体
type CreateDeviceRequest struct {
	BranchID     uint   `json:"branch_id" binding:"required" example:"1"`
	Name         string `json:"name" binding:"required" example:"正门闸机"`
	SerialNumber string `json:"serial_number" binding:"required" example:"GA-2024-00017"`
	IPAddress    string `json:"ip_address" example:"192.168.1.120"`
	RelayDelay   int    `json:"relay_delay" example:"3"`
}

// CreateDevice 创建设备
// @Summary      创建设备
// @Description  注册一台门禁终端
// @Tags         Device
// @Accept       json
// @Produce      json
// @Param        request body CreateDeviceRequest true "设备信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /devices [post]
// @Security     BearerAuth
func (c *DeviceController) CreateDevice() {
	var req CreateDeviceRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	device := &models.AccessDevice{
		BranchID:     req.BranchID,
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		IPAddress:    req.IPAddress,
		RelayDelay:   req.RelayDelay,
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	if err := deviceService.CreateDevice(device); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "创建设备失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, device)
}

// UpdateDeviceRequest 表示更新设备的请求体
type UpdateDeviceRequest struct {
	Name       string `json:"name" example:"后门闸机"`
	IPAddress  string `json:"ip_address" example:"192.168.1.121"`
	RelayDelay *int   `json:"relay_delay" example:"5"`
}

// UpdateDevice 更新设备
// @Summary      更新设备
// @Description  更新门禁终端的名称、IP地址与开闸保持时间
// @Tags         Device
// @Accept       json
// @Produce      json
// @Param        id path int true "设备ID"
// @Param        request body UpdateDeviceRequest true "更新的设备信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /devices/{id} [put]
// @Security     BearerAuth
func (c *DeviceController) UpdateDevice() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdateDeviceRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.IPAddress != "" {
		updates["ip_address"] = req.IPAddress
	}
	if req.RelayDelay != nil {
		updates["relay_delay"] = *req.RelayDelay
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	device, err := deviceService.UpdateDevice(uint(id), updates)
	if err != nil {
		if err == services.ErrDeviceNotFound {
			response.Fail(c.Ctx, code.ErrDeviceNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新设备失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, device)
}

// DeleteDevice 删除设备
// @Summary      删除设备
// @Description  删除门禁终端及其待同步队列
// @Tags         Device
// @Accept       json
// @Produce      json
// @Param        id path int true "设备ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /devices/{id} [delete]
// @Security     BearerAuth
func (c *DeviceController) DeleteDevice() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	if err := deviceService.DeleteDevice(uint(id)); err != nil {
		if err == services.ErrDeviceNotFound {
			response.Fail(c.Ctx, code.ErrDeviceNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除设备失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// RemoteUnlockRequest 表示远程开闸的请求体
type RemoteUnlockRequest struct {
	Operator string `json:"operator" example:"admin"`
}

// RemoteUnlock 远程开闸
// @Summary      远程开闸
// @Description  通过MQTT向在线终端下发远程开闸指令
// @Tags         Device
// @Accept       json
// @Produce      json
// @Param        id path int true "设备ID"
// @Param        request body RemoteUnlockRequest false "操作人"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /devices/{id}/unlock [post]
// @Security     BearerAuth
func (c *DeviceController) RemoteUnlock() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req RemoteUnlockRequest
	_ = c.Ctx.ShouldBindJSON(&req)
	if req.Operator == "" {
		req.Operator = "admin"
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	device, err := deviceService.GetDeviceByID(uint(id))
	if err != nil {
		if err == services.ErrDeviceNotFound {
			response.Fail(c.Ctx, code.ErrDeviceNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询设备失败: "+err.Error(), nil)
		return
	}

	mqttService := c.Container.GetService("mqtt_device").(services.InterfaceMQTTDeviceService)
	if err := mqttService.RemoteUnlock(device.SerialNumber, req.Operator); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "远程开闸失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"device_serial": device.SerialNumber,
		"operator":      req.Operator,
	})
}
