package models

import "time"

// PaymentGateway represents a supported payment gateway
type PaymentGateway string

const (
	GatewayRazorpay PaymentGateway = "razorpay"
	GatewayPhonePe  PaymentGateway = "phonepe"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice represents a bill issued to a member (membership purchase, PT package...)
type Invoice struct {
	BaseModel
	BranchID      uint          `gorm:"not null;index" json:"branch_id"`
	MemberID      uint          `gorm:"not null;index" json:"member_id"`
	MembershipID  *uint         `gorm:"index" json:"membership_id,omitempty"` // 会籍购买账单关联待激活会籍
	InvoiceNumber string        `gorm:"type:varchar(30);unique;not null" json:"invoice_number"`
	AmountPaise   int64         `gorm:"not null" json:"amount_paise"`
	Status        InvoiceStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	Notes         string        `gorm:"type:varchar(200)" json:"notes,omitempty"`

	// Relations
	Member       *Member              `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Transactions []PaymentTransaction `gorm:"foreignKey:InvoiceID" json:"transactions,omitempty"`
}

// TransactionStatus represents the reconciliation status of a gateway transaction
type TransactionStatus string

const (
	TransactionStatusCreated  TransactionStatus = "created"
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusCaptured TransactionStatus = "captured"
	TransactionStatusFailed   TransactionStatus = "failed"
	TransactionStatusRefunded TransactionStatus = "refunded"
)

// PaymentTransaction represents one gateway-side payment tracked by webhook callbacks.
// gateway_order_id唯一，回调按其做幂等对账。
type PaymentTransaction struct {
	BaseModel
	BranchID          uint              `gorm:"not null;index" json:"branch_id"`
	InvoiceID         *uint             `gorm:"index" json:"invoice_id,omitempty"` // 未匹配到账单的回调也入库留痕

	Gateway           PaymentGateway    `gorm:"type:varchar(20);not null" json:"gateway"`
	GatewayOrderID    string            `gorm:"type:varchar(100);uniqueIndex;not null" json:"gateway_order_id"`
	GatewayPaymentID  string            `gorm:"type:varchar(100)" json:"gateway_payment_id,omitempty"`
	AmountPaise       int64             `json:"amount_paise"`
	Status            TransactionStatus `gorm:"type:varchar(20);default:'created'" json:"status"`
	SignatureVerified bool              `gorm:"default:false" json:"signature_verified"`
	RawPayload        string            `gorm:"type:text" json:"-"` // 最近一次回调原始报文

	// Relations
	Invoice *Invoice `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
}
