package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// 事件队列名
const (
	BookingConfirmedQueue   = "gym.booking.confirmed"
	PaymentCapturedQueue    = "gym.payment.captured"
	MembershipExpiringQueue = "gym.membership.expiring"
)

// Publisher 业务事件生产者。
// 发布是尽力而为：队列不可用只记日志，不影响主流程。
type Publisher struct {
	url  string
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher 创建事件生产者并尝试建立连接
func NewPublisher(url string) *Publisher {
	p := &Publisher{url: url}
	if err := p.connect(); err != nil {
		logger.Warning("RabbitMQ连接失败: %v，事件发布将被跳过", err)
	}
	return p
}

// connect 建立连接并声明持久化队列
func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	for _, name := range []string{BookingConfirmedQueue, PaymentCapturedQueue, MembershipExpiringQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return err
		}
	}

	p.conn = conn
	p.ch = ch
	return nil
}

// publish 序列化并投递一条持久化消息，必要时重连一次
func (p *Publisher) publish(queueName string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("事件序列化失败: queue=%s err=%v", queueName, err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.conn == nil || p.conn.IsClosed() {
		if err := p.connect(); err != nil {
			logger.Warning("事件发布跳过（RabbitMQ不可用）: queue=%s err=%v", queueName, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		logger.Error("事件发布失败: queue=%s err=%v", queueName, err)
	}
}

// PublishBookingConfirmed 投递预约成功事件
func (p *Publisher) PublishBookingConfirmed(booking *models.BenefitBooking) {
	p.publish(BookingConfirmedQueue, BookingConfirmedEvent{
		BookingID:    booking.ID,
		MemberID:     booking.MemberID,
		MembershipID: booking.MembershipID,
		SlotID:       booking.SlotID,
		BookedAt:     booking.BookedAt.Format(time.RFC3339),
	})
}

// PublishPaymentCaptured 投递支付到账事件
func (p *Publisher) PublishPaymentCaptured(gatewayOrderID, gateway string, amountPaise int64) {
	p.publish(PaymentCapturedQueue, PaymentCapturedEvent{
		GatewayOrderID: gatewayOrderID,
		Gateway:        gateway,
		AmountPaise:    amountPaise,
		CapturedAt:     time.Now().Format(time.RFC3339),
	})
}

// PublishMembershipExpiring 投递会籍临近到期事件
func (p *Publisher) PublishMembershipExpiring(membershipID, memberID uint, endDate time.Time) {
	p.publish(MembershipExpiringQueue, MembershipExpiringEvent{
		MembershipID: membershipID,
		MemberID:     memberID,
		EndDate:      endDate.Format("2006-01-02"),
	})
}

// Close 关闭连接
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
