package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// MQTT终端通道必须能充当花名册同步通知通道
var _ SyncNotifier = (*MQTTDeviceService)(nil)

type recordingNotifier struct {
	serials []string
}

func (n *recordingNotifier) NotifySyncPending(deviceSerial string) error {
	n.serials = append(n.serials, deviceSerial)
	return nil
}

func TestSetSyncNotifier(t *testing.T) {
	svc := &DeviceService{}
	notifier := &recordingNotifier{}

	svc.SetSyncNotifier(notifier)
	assert.Same(t, notifier, svc.Notifier.(*recordingNotifier))

	err := svc.Notifier.NotifySyncPending("GYM-DEV-001")
	assert.NoError(t, err)
	assert.Equal(t, []string{"GYM-DEV-001"}, notifier.serials)
}
