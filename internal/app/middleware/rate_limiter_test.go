package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTokenBucketBurstThenDeny(t *testing.T) {
	tb := NewTokenBucket(1, 3)

	// 桶满时可以连续取3个令牌
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	// 第4个立即请求应被拒绝
	assert.False(t, tb.Allow())
}

func TestTokenBucketRefills(t *testing.T) {
	// 每秒100个令牌，容量1：耗尽后约10ms回一个
	tb := NewTokenBucket(100, 1)
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	time.Sleep(30 * time.Millisecond)
	assert.True(t, tb.Allow())
}

func TestTokenBucketCapacityCap(t *testing.T) {
	tb := NewTokenBucket(1000, 2)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())

	// 长时间闲置后令牌也不会超过容量
	time.Sleep(20 * time.Millisecond)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestIPRateLimiterRejectsWithEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", IPRateLimiter(0.001, 1), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	w1 := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req1.RemoteAddr = "10.1.2.3:5000"
	r.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req2.RemoteAddr = "10.1.2.3:5000"
	r.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.Contains(t, w2.Body.String(), "请求频率过高")
}

func TestIPRateLimiterIsolatesClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/isolated", IPRateLimiter(0.001, 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w1 := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodGet, "/isolated", nil)
	req1.RemoteAddr = "10.0.0.1:5000"
	r.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)

	// 另一个IP不受前者配额影响
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/isolated", nil)
	req2.RemoteAddr = "10.0.0.2:5000"
	r.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
}
