package services

import (
	"time"

	"gymcore-http-service/internal/domain/models"
)

// InterfaceEventPublisher 定义业务事件发布接口，由internal/queue的Publisher实现。
// 发布失败不影响主流程。
type InterfaceEventPublisher interface {
	PublishBookingConfirmed(booking *models.BenefitBooking)
	PublishPaymentCaptured(gatewayOrderID, gateway string, amountPaise int64)
	PublishMembershipExpiring(membershipID, memberID uint, endDate time.Time)
}
