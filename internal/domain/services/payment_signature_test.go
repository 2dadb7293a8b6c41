package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"gymcore-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func razorpaySign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyRazorpaySignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{}}`)
	secret := "whsec_test_123"

	assert.True(t, VerifyRazorpaySignature(body, razorpaySign(body, secret), secret))
}

func TestVerifyRazorpaySignatureRejectsTampering(t *testing.T) {
	body := []byte(`{"event":"payment.captured","amount":50000}`)
	secret := "whsec_test_123"
	sig := razorpaySign(body, secret)

	tampered := []byte(`{"event":"payment.captured","amount":99999}`)
	assert.False(t, VerifyRazorpaySignature(tampered, sig, secret))
	assert.False(t, VerifyRazorpaySignature(body, sig, "wrong_secret"))
	assert.False(t, VerifyRazorpaySignature(body, "deadbeef", secret))
}

func TestVerifyRazorpaySignatureFailsClosed(t *testing.T) {
	body := []byte(`{}`)

	// 缺签名或缺密钥一律拒绝
	assert.False(t, VerifyRazorpaySignature(body, "", "secret"))
	assert.False(t, VerifyRazorpaySignature(body, razorpaySign(body, "secret"), ""))
}

func TestVerifyPhonePeChecksum(t *testing.T) {
	base64Response := "eyJjb2RlIjoiUEFZTUVOVF9TVUNDRVNTIn0="
	saltKey := "salt-key-1"
	saltIndex := "1"

	sum := sha256.Sum256([]byte(base64Response + saltKey))
	checksum := hex.EncodeToString(sum[:]) + "###" + saltIndex

	assert.True(t, VerifyPhonePeChecksum(base64Response, checksum, saltKey, saltIndex))
	assert.False(t, VerifyPhonePeChecksum(base64Response, checksum, "other-salt", saltIndex))
	// saltIndex不一致时校验和尾部不匹配
	assert.False(t, VerifyPhonePeChecksum(base64Response, checksum, saltKey, "2"))
	assert.False(t, VerifyPhonePeChecksum(base64Response, "", saltKey, saltIndex))
	assert.False(t, VerifyPhonePeChecksum(base64Response, checksum, "", saltIndex))
}

func TestMapRazorpayStatus(t *testing.T) {
	assert.Equal(t, models.TransactionStatusCaptured, MapRazorpayStatus("payment.captured"))
	assert.Equal(t, models.TransactionStatusFailed, MapRazorpayStatus("payment.failed"))
	assert.Equal(t, models.TransactionStatusPending, MapRazorpayStatus("payment.authorized"))
	assert.Equal(t, models.TransactionStatusRefunded, MapRazorpayStatus("refund.processed"))
	assert.Equal(t, models.TransactionStatusPending, MapRazorpayStatus("order.paid"))
}

func TestMapPhonePeStatus(t *testing.T) {
	assert.Equal(t, models.TransactionStatusCaptured, MapPhonePeStatus("PAYMENT_SUCCESS"))
	assert.Equal(t, models.TransactionStatusCaptured, MapPhonePeStatus("COMPLETED"))
	assert.Equal(t, models.TransactionStatusFailed, MapPhonePeStatus("PAYMENT_ERROR"))
	assert.Equal(t, models.TransactionStatusPending, MapPhonePeStatus("PAYMENT_PENDING"))
	assert.Equal(t, models.TransactionStatusPending, MapPhonePeStatus("SOMETHING_ELSE"))
}
