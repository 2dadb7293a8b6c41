package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gymcore-http-service/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartNotificationConsumer 启动后台通知消费者。
// 消费预约确认/支付到账/会籍到期三个队列，把每条事件追加到logs/notifications.log
// （通知渠道的占位实现，短信/邮件网关接入时替换）。
// 带重连与指数退避，消费失败的消息会被nack重回队列。
func StartNotificationConsumer(url string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warning("通知消费者连接RabbitMQ失败: %v，%s后重试", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // 连上后重置退避

		if err := consumeLoop(conn); err != nil {
			logger.Warning("通知消费循环退出: %v，重连中", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("打开channel失败: %w", err)
	}
	defer ch.Close()

	queues := []string{BookingConfirmedQueue, PaymentCapturedQueue, MembershipExpiringQueue}
	sources := make([]<-chan amqp.Delivery, 0, len(queues))

	for _, name := range queues {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("声明队列 %s 失败: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("消费队列 %s 失败: %w", name, err)
		}
		sources = append(sources, msgs)
	}

	for d := range mergeDeliveries(sources...) {
		// 默认exchange投递时RoutingKey即队列名
		if err := appendNotificationLog(d.RoutingKey, d.Body); err != nil {
			logger.Error("写通知日志失败: %v", err)
			d.Nack(false, true)
			continue
		}
		d.Ack(false)
	}
	return fmt.Errorf("消费通道已关闭")
}

// mergeDeliveries 把多个队列的消费通道汇聚为一个。
// 连接断开时amqp会关闭各源通道，全部源关闭后输出通道随之关闭，
// 消费循环得以返回并触发外层重连。
func mergeDeliveries(sources ...<-chan amqp.Delivery) <-chan amqp.Delivery {
	out := make(chan amqp.Delivery)
	var forwarders sync.WaitGroup
	for _, src := range sources {
		forwarders.Add(1)
		go func(msgs <-chan amqp.Delivery) {
			defer forwarders.Done()
			for m := range msgs {
				out <- m
			}
		}(src)
	}
	go func() {
		forwarders.Wait()
		close(out)
	}()
	return out
}

// appendNotificationLog 把事件按单行JSON追加到通知日志
func appendNotificationLog(source string, body []byte) error {
	if err := os.MkdirAll("logs", 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join("logs", "notifications.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	defer f.Close()

	// 校验是合法JSON再落盘
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return err
	}

	line := fmt.Sprintf("%s %s %s\n", time.Now().Format(time.RFC3339), source, string(body))
	_, err = f.WriteString(line)
	return err
}
