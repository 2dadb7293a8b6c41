// Package queue 定义通过消息队列投递的业务事件及其生产者/消费者。
package queue

// BookingConfirmedEvent 预约成功后投递，供下游做通知与统计
type BookingConfirmedEvent struct {
	BookingID    uint   `json:"booking_id"`
	MemberID     uint   `json:"member_id"`
	MembershipID uint   `json:"membership_id"`
	SlotID       uint   `json:"slot_id"`
	BookedAt     string `json:"booked_at"`
}

// PaymentCapturedEvent 支付到账后投递
type PaymentCapturedEvent struct {
	GatewayOrderID string `json:"gateway_order_id"`
	Gateway        string `json:"gateway"`
	AmountPaise    int64  `json:"amount_paise"`
	CapturedAt     string `json:"captured_at"`
}

// MembershipExpiringEvent 会籍临近到期提醒
type MembershipExpiringEvent struct {
	MembershipID uint   `json:"membership_id"`
	MemberID     uint   `json:"member_id"`
	EndDate      string `json:"end_date"`
}
