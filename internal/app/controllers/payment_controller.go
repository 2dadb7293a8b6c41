package controllers

import (
	"io"
	"net/http"
	"strconv"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/domain/services"
	"gymcore-http-service/internal/domain/services/container"
	"gymcore-http-service/internal/error/code"
	"gymcore-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 回调报文大小上限，超出直接返回413
const maxWebhookBodyBytes = 100 * 1024

// InterfacePaymentController 定义支付控制器接口
type InterfacePaymentController interface {
	HandleWebhook()
	GetInvoice()
	GetMemberInvoices()
	MarkInvoicePaid()
}

// PaymentController 处理支付回调与账单请求
type PaymentController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPaymentController 创建一个新的支付控制器
func NewPaymentController(ctx *gin.Context, container *container.ServiceContainer) *PaymentController {
	return &PaymentController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandlePaymentFunc 返回一个处理支付请求的Gin处理函数
func HandlePaymentFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPaymentController(ctx, container)

		switch method {
		case "webhook":
			controller.HandleWebhook()
		case "getInvoice":
			controller.GetInvoice()
		case "getMemberInvoices":
			controller.GetMemberInvoices()
		case "markInvoicePaid":
			controller.MarkInvoicePaid()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// HandleWebhook 处理支付网关回调
// @Summary      处理支付网关回调
// @Description  接收Razorpay/PhonePe异步回调，验签后按网关单号幂等对账
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        gateway query string true "支付网关 razorpay/phonepe"
// @Param        branch_id query string true "分店UUID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      413  {object}  ErrorResponse
// @Router       /payments/webhook [post]
func (c *PaymentController) HandleWebhook() {
	gateway := c.Ctx.Query("gateway")
	branchUUID := c.Ctx.Query("branch_id")

	// 网关与分店标识先做格式校验，不落库查询
	if gateway != string(models.GatewayRazorpay) && gateway != string(models.GatewayPhonePe) {
		response.Fail(c.Ctx, code.ErrGatewayInvalid, nil)
		return
	}
	if _, err := uuid.Parse(branchUUID); err != nil {
		response.ParamError(c.Ctx, "无效的分店标识")
		return
	}

	// 限制报文大小，防止恶意超大请求体
	c.Ctx.Request.Body = http.MaxBytesReader(c.Ctx.Writer, c.Ctx.Request.Body, maxWebhookBodyBytes)
	rawBody, err := io.ReadAll(c.Ctx.Request.Body)
	if err != nil {
		response.Fail(c.Ctx, code.ErrPayloadTooLarge, nil)
		return
	}

	// Razorpay与PhonePe使用不同的签名头
	signature := c.Ctx.GetHeader("X-Razorpay-Signature")
	if gateway == "phonepe" {
		signature = c.Ctx.GetHeader("X-VERIFY")
	}

	paymentService := c.Container.GetService("payment").(services.InterfacePaymentService)
	result, err := paymentService.ProcessWebhook(gateway, branchUUID, rawBody, signature)
	if err != nil {
		switch err {
		case services.ErrGatewayInvalid:
			response.Fail(c.Ctx, code.ErrGatewayInvalid, nil)
		case services.ErrBranchNotFound:
			response.Fail(c.Ctx, code.ErrBranchNotFound, nil)
		case services.ErrSignatureInvalid:
			response.Fail(c.Ctx, code.ErrSignatureInvalid, nil)
		case services.ErrMalformedPayload:
			response.FailWithMessage(c.Ctx, code.ErrValidation, "回调报文格式无效", nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "处理支付回调失败: "+err.Error(), nil)
		}
		return
	}

	response.Success(c.Ctx, result)
}

// GetInvoice 获取账单详情
// @Summary      获取账单详情
// @Description  根据ID获取账单及其交易记录
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        id path int true "账单ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /invoices/{id} [get]
// @Security     BearerAuth
func (c *PaymentController) GetInvoice() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	paymentService := c.Container.GetService("payment").(services.InterfacePaymentService)
	invoice, err := paymentService.GetInvoiceByID(uint(id))
	if err != nil {
		if err == services.ErrInvoiceNotFound {
			response.Fail(c.Ctx, code.ErrInvoiceNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询账单失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, invoice)
}

// GetMemberInvoices 获取会员账单列表
// @Summary      获取会员账单列表
// @Description  查询指定会员的全部账单
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        id path int true "会员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /members/{id}/invoices [get]
// @Security     BearerAuth
func (c *PaymentController) GetMemberInvoices() {
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

// MarkInvoicePaid 人工核销账单
// @Summary      人工核销账单
// @Description  线下收款后人工将账单置为已支付，操作人取自令牌身份
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        id path int true "账单ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /invoices/{id}/mark-paid [post]
// @Security     BearerAuth
func (c *PaymentController) MarkInvoicePaid() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	paymentService := c.Container.GetService("payment").(services.InterfacePaymentService)
	invoice, err := paymentService.MarkInvoicePaid(uint(id), ActingPrincipal(c.Ctx))
	if err != nil {
		if err == services.ErrInvoiceNotFound {
			response.Fail(c.Ctx, code.ErrInvoiceNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrValidation, "核销账单失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, invoice)
}
