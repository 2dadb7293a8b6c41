package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/infrastructure/config"
	"gymcore-http-service/pkg/logger"
	"gymcore-http-service/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 支付相关的业务错误
var (
	ErrGatewayInvalid   = errors.New("unsupported payment gateway")
	ErrBranchNotFound   = errors.New("branch not found")
	ErrSignatureInvalid = errors.New("webhook signature verification failed")
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrInvoiceNotFound  = errors.New("invoice not found")
)

// razorpayWebhookPayload Razorpay回调报文（仅取对账需要的字段）
type razorpayWebhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Amount  int64  `json:"amount"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// phonePeWebhookPayload PhonePe回调报文，response为base64编码的JSON
type phonePeWebhookPayload struct {
	Response string `json:"response"`
}

type phonePeResponseData struct {
	Code string `json:"code"`
	Data struct {
		MerchantTransactionID string `json:"merchantTransactionId"`
		TransactionID         string `json:"transactionId"`
		Amount                int64  `json:"amount"`
		State                 string `json:"state"`
	} `json:"data"`
}

// WebhookResult 回调处理结果
type WebhookResult struct {
	TransactionID  uint                     `json:"transaction_id"`
	GatewayOrderID string                   `json:"gateway_order_id"`
	Status         models.TransactionStatus `json:"status"`
	InvoicePaid    bool                     `json:"invoice_paid"`
}

// InterfacePaymentService 定义支付服务接口
type InterfacePaymentService interface {
	ProcessWebhook(gateway, branchUUID string, rawBody []byte, signatureHeader string) (*WebhookResult, error)
	CreateInvoice(branchID, memberID uint, membershipID *uint, amountPaise int64, notes string) (*models.Invoice, error)
	CreatePendingTransaction(branchID, invoiceID uint, gateway models.PaymentGateway, gatewayOrderID string, amountPaise int64) (*models.PaymentTransaction, error)
	GetInvoiceByID(id uint) (*models.Invoice, error)
	GetMemberInvoices(memberID uint) ([]models.Invoice, error)
	MarkInvoicePaid(invoiceID uint, actor string) (*models.Invoice, error)
}

// PaymentService 提供账单与支付回调对账服务
type PaymentService struct {
	DB             *gorm.DB
	Config         *config.Config
	EventPublisher InterfaceEventPublisher
}

// NewPaymentService 创建一个新的支付服务
func NewPaymentService(db *gorm.DB, cfg *config.Config, publisher InterfaceEventPublisher) InterfacePaymentService {
	return &PaymentService{
		DB:             db,
		Config:         cfg,
		EventPublisher: publisher,
	}
}

// 1 ProcessWebhook 处理支付网关异步回调。
// 网关白名单与分店有效性校验 -> 签名验证（配置了密钥但缺签名头直接拒绝）->
// 报文解析 -> 按gateway_order_id幂等对账。
// 只有状态首次变为captured时才触发账单置paid的副作用。
func (s *PaymentService) ProcessWebhook(gateway, branchUUID string, rawBody []byte, signatureHeader string) (*WebhookResult, error) {
	var branch models.Branch
	if err := s.DB.Where("uuid = ?", branchUUID).First(&branch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}

	switch models.PaymentGateway(gateway) {
	case models.GatewayRazorpay:
		return s.processRazorpay(&branch, rawBody, signatureHeader)
	case models.GatewayPhonePe:
		return s.processPhonePe(&branch, rawBody, signatureHeader)
	default:
		return nil, ErrGatewayInvalid
	}
}

// processRazorpay Razorpay分支：对原始报文做HMAC-SHA256验签
func (s *PaymentService) processRazorpay(branch *models.Branch, rawBody []byte, signature string) (*WebhookResult, error) {
	secret := branch.RazorpayWebhookSecret
	if secret == "" {
		secret = s.Config.RazorpayWebhookSecret
	}

	if secret != "" {
		// 配置了密钥就必须带签名，缺失或不匹配都按验签失败关闭
		if signature == "" || !VerifyRazorpaySignature(rawBody, signature, secret) {
			return nil, ErrSignatureInvalid
		}
	} else {
		logger.Warning("分店 %s 未配置Razorpay webhook密钥，跳过验签", branch.Code)
	}

	var payload razorpayWebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, ErrMalformedPayload
	}
	entity := payload.Payload.Payment.Entity
	if entity.OrderID == "" {
		return nil, ErrMalformedPayload
	}

	status := MapRazorpayStatus(payload.Event)
	return s.reconcile(branch, models.GatewayRazorpay, entity.OrderID, entity.ID, entity.Amount, status, rawBody, secret != "")
}

// processPhonePe PhonePe分支：对base64响应体做SHA256校验和验证
func (s *PaymentService) processPhonePe(branch *models.Branch, rawBody []byte, checksum string) (*WebhookResult, error) {
	saltKey := branch.PhonePeSaltKey
	saltIndex := branch.PhonePeSaltIndex
	if saltKey == "" {
		saltKey = s.Config.PhonePeSaltKey
		saltIndex = s.Config.PhonePeSaltIndex
	}

	var payload phonePeWebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil || payload.Response == "" {
		return nil, ErrMalformedPayload
	}

	if saltKey != "" {
		if checksum == "" || !VerifyPhonePeChecksum(payload.Response, checksum, saltKey, saltIndex) {
			return nil, ErrSignatureInvalid
		}
	} else {
		logger.Warning("分店 %s 未配置PhonePe salt key，跳过验签", branch.Code)
	}

	decoded, err := base64.StdEncoding.DecodeString(payload.Response)
	if err != nil {
		return nil, ErrMalformedPayload
	}
	var resp phonePeResponseData
	if err := json.Unmarshal(decoded, &resp); err != nil {
		return nil, ErrMalformedPayload
	}
	if resp.Data.MerchantTransactionID == "" {
		return nil, ErrMalformedPayload
	}

	status := MapPhonePeStatus(resp.Code)
	if status == models.TransactionStatusPending {
		// code未知时再看state字段
		status = MapPhonePeStatus(resp.Data.State)
	}
	return s.reconcile(branch, models.GatewayPhonePe, resp.Data.MerchantTransactionID, resp.Data.TransactionID, resp.Data.Amount, status, rawBody, saltKey != "")
}

// reconcile 按gateway_order_id幂等对账。
// 已有交易行加锁更新；不存在则插入新行。仅当状态从非captured变为captured时
// 触发账单与会籍副作用，重复的captured回调是无操作。
func (s *PaymentService) reconcile(branch *models.Branch, gateway models.PaymentGateway, orderID, paymentID string, amountPaise int64, status models.TransactionStatus, rawBody []byte, verified bool) (*WebhookResult, error) {
	result := &WebhookResult{GatewayOrderID: orderID, Status: status}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txn models.PaymentTransaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("gateway_order_id = ?", orderID).
			First(&txn).Error

		capturedNow := false
		if errors.Is(err, gorm.ErrRecordNotFound) {
			txn = models.PaymentTransaction{
				BranchID:          branch.ID,
				Gateway:           gateway,
				GatewayOrderID:    orderID,
				GatewayPaymentID:  paymentID,
				AmountPaise:       amountPaise,
				Status:            status,
				SignatureVerified: verified,
				RawPayload:        string(rawBody),
			}
			if err := tx.Create(&txn).Error; err != nil {
				return err
			}
			capturedNow = status == models.TransactionStatusCaptured
		} else if err != nil {
			return err
		} else {
			capturedNow = txn.Status != models.TransactionStatusCaptured && status == models.TransactionStatusCaptured
			updates := map[string]interface{}{
				"status":             status,
				"gateway_payment_id": paymentID,
				"signature_verified": verified,
				"raw_payload":        string(rawBody),
			}
			if amountPaise > 0 {
				updates["amount_paise"] = amountPaise
			}
			if err := tx.Model(&txn).Updates(updates).Error; err != nil {
				return err
			}
		}

		result.TransactionID = txn.ID

		if capturedNow && txn.InvoiceID != nil {
			if err := s.settleInvoiceTx(tx, *txn.InvoiceID); err != nil {
				return err
			}
			result.InvoicePaid = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.InvoicePaid && s.EventPublisher != nil {
		s.EventPublisher.PublishPaymentCaptured(result.GatewayOrderID, string(gateway), amountPaise)
	}
	return result, nil
}

// settleInvoiceTx 账单置paid（会籍在购买时即为active，无需在此激活），已paid的账单幂等跳过
func (s *PaymentService) settleInvoiceTx(tx *gorm.DB, invoiceID uint) error {
	var invoice models.Invoice
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&invoice, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvoiceNotFound
		}
		return err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil
	}

	now := time.Now()
	return tx.Model(&invoice).Updates(map[string]interface{}{
		"status":  models.InvoiceStatusPaid,
		"paid_at": now,
	}).Error
}

// 2 CreateInvoice 创建账单
func (s *PaymentService) CreateInvoice(branchID, memberID uint, membershipID *uint, amountPaise int64, notes string) (*models.Invoice, error) {
	var branch models.Branch
	if err := s.DB.First(&branch, branchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}

	invoice := &models.Invoice{
		BranchID:      branchID,
		MemberID:      memberID,
		MembershipID:  membershipID,
		InvoiceNumber: utils.GenerateInvoiceNumber(branch.Code, time.Now()),
		AmountPaise:   amountPaise,
		Status:        models.InvoiceStatusPending,
		Notes:         notes,
	}
	if err := s.DB.Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// 3 CreatePendingTransaction 下单时预建交易行，回调按order_id对账
func (s *PaymentService) CreatePendingTransaction(branchID, invoiceID uint, gateway models.PaymentGateway, gatewayOrderID string, amountPaise int64) (*models.PaymentTransaction, error) {
	txn := &models.PaymentTransaction{
		BranchID:       branchID,
		InvoiceID:      &invoiceID,
		Gateway:        gateway,
		GatewayOrderID: gatewayOrderID,
		AmountPaise:    amountPaise,
		Status:         models.TransactionStatusCreated,
	}
	if err := s.DB.Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

// 4 GetInvoiceByID 根据ID获取账单
func (s *PaymentService) GetInvoiceByID(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.DB.Preload("Transactions").First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// 5 GetMemberInvoices 查询会员的全部账单
func (s *PaymentService) GetMemberInvoices(memberID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := s.DB.Where("member_id = ?", memberID).Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// 6 MarkInvoicePaid 人工核销账单（管理员操作，现金收款等场景）
func (s *PaymentService) MarkInvoicePaid(invoiceID uint, actor string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.settleInvoiceTx(tx, invoiceID); err != nil {
			return err
		}
		return tx.First(&invoice, invoiceID).Error
	})
	if err != nil {
		return nil, err
	}
	logger.Info("账单 %s 由 %s 人工核销", invoice.InvoiceNumber, actor)
	return &invoice, nil
}
