package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"gymcore-http-service/internal/domain/models"
)

// VerifyRazorpaySignature 校验Razorpay回调签名。
// 签名为对原始请求体的HMAC-SHA256十六进制摘要，密钥为分店的webhook secret。
func VerifyRazorpaySignature(rawBody []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyPhonePeChecksum 校验PhonePe回调X-VERIFY头。
// 格式: SHA256(base64响应体 + saltKey) + "###" + saltIndex。
func VerifyPhonePeChecksum(base64Response, checksum, saltKey, saltIndex string) bool {
	if saltKey == "" || checksum == "" {
		return false
	}
	sum := sha256.Sum256([]byte(base64Response + saltKey))
	expected := hex.EncodeToString(sum[:]) + "###" + saltIndex
	return hmac.Equal([]byte(expected), []byte(checksum))
}

// MapRazorpayStatus 将Razorpay事件名映射为内部交易状态
func MapRazorpayStatus(event string) models.TransactionStatus {
	switch event {
	case "payment.captured":
		return models.TransactionStatusCaptured
	case "payment.failed":
		return models.TransactionStatusFailed
	case "payment.authorized":
		return models.TransactionStatusPending
	case "refund.processed":
		return models.TransactionStatusRefunded
	default:
		return models.TransactionStatusPending
	}
}

// MapPhonePeStatus 将PhonePe状态码映射为内部交易状态
func MapPhonePeStatus(code string) models.TransactionStatus {
	switch code {
	case "PAYMENT_SUCCESS", "COMPLETED":
		return models.TransactionStatusCaptured
	case "PAYMENT_ERROR", "FAILED":
		return models.TransactionStatusFailed
	case "PAYMENT_PENDING":
		return models.TransactionStatusPending
	default:
		return models.TransactionStatusPending
	}
}
