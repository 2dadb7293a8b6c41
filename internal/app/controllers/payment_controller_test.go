package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func webhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/payments/webhook", HandlePaymentFunc(nil, "webhook"))
	return r
}

func TestHandleWebhookRejectsUnknownGateway(t *testing.T) {
	r := webhookRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/api/payments/webhook?gateway=stripe&branch_id=0b0e5bb6-4f58-4bdb-a1c7-a33cbb0c2e52",
		strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "不支持的支付网关")
}

func TestHandleWebhookRejectsMalformedBranchUUID(t *testing.T) {
	r := webhookRouter()

	// 格式非法的分店标识在查库前就被拒绝，返回400而不是404
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/api/payments/webhook?gateway=razorpay&branch_id=not-a-uuid",
		strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "无效的分店标识")
}

func TestHandleWebhookRejectsMissingParams(t *testing.T) {
	r := webhookRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
