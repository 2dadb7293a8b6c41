package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestMergeDeliveriesForwardsAllSources(t *testing.T) {
	a := make(chan amqp.Delivery, 1)
	b := make(chan amqp.Delivery, 1)
	a <- amqp.Delivery{RoutingKey: BookingConfirmedQueue}
	b <- amqp.Delivery{RoutingKey: PaymentCapturedQueue}
	close(a)
	close(b)

	seen := make(map[string]bool)
	for d := range mergeDeliveries((<-chan amqp.Delivery)(a), (<-chan amqp.Delivery)(b)) {
		seen[d.RoutingKey] = true
	}
	assert.True(t, seen[BookingConfirmedQueue])
	assert.True(t, seen[PaymentCapturedQueue])
}

func TestMergeDeliveriesClosesWhenSourcesClose(t *testing.T) {
	a := make(chan amqp.Delivery)
	b := make(chan amqp.Delivery)
	out := mergeDeliveries((<-chan amqp.Delivery)(a), (<-chan amqp.Delivery)(b))

	// 模拟连接断开：amqp关闭各队列通道后，汇聚通道必须随之关闭，
	// 否则消费循环永久阻塞、重连逻辑失效
	close(a)
	close(b)

	select {
	case _, open := <-out:
		require.False(t, open, "汇聚通道应已关闭")
	case <-time.After(2 * time.Second):
		t.Fatal("源通道全部关闭后汇聚通道未关闭")
	}
}

func TestMergeDeliveriesStaysOpenWhileAnySourceOpen(t *testing.T) {
	a := make(chan amqp.Delivery)
	b := make(chan amqp.Delivery, 1)
	out := mergeDeliveries((<-chan amqp.Delivery)(a), (<-chan amqp.Delivery)(b))

	close(a)
	b <- amqp.Delivery{RoutingKey: MembershipExpiringQueue}

	select {
	case d, open := <-out:
		require.True(t, open)
		assert.Equal(t, MembershipExpiringQueue, d.RoutingKey)
	case <-time.After(2 * time.Second):
		t.Fatal("仍有源通道打开时汇聚通道不应关闭")
	}
	close(b)
}
