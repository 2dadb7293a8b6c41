package middleware

import (
	"sync"
	"time"

	"gymcore-http-service/internal/error/code"
	"gymcore-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// 简单的令牌桶限流器
type TokenBucket struct {
	rate       float64    // 每秒填充的令牌数
	capacity   int        // 桶的容量
	tokens     float64    // 当前令牌数
	lastRefill time.Time  // 上次填充时间
	mu         sync.Mutex // 互斥锁
}

// NewTokenBucket 创建新的令牌桶限流器
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow 尝试获取令牌
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	// 填充令牌
	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// lastUsed 返回该桶最近一次被访问的时间
func (tb *TokenBucket) lastUsed() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastRefill
}

var (
	limiters   = make(map[string]*TokenBucket)
	limitersMu sync.RWMutex
)

// RateLimiterConfig 限流器配置
type RateLimiterConfig struct {
	Rate      float64                   // 每秒允许的请求数
	Burst     int                       // 允许的突发请求数
	LimitType string                    // 限流类型: "ip", "path", "combined"
	KeyFunc   func(*gin.Context) string // 自定义键生成函数
}

// DefaultRateLimiterConfig 默认限流器配置
var DefaultRateLimiterConfig = RateLimiterConfig{
	Rate:      1,
	Burst:     5,
	LimitType: "ip",
}

// getLimiter 按键取或建限流器
func getLimiter(key string, cfg RateLimiterConfig) *TokenBucket {
	limitersMu.RLock()
	limiter, exists := limiters[key]
	limitersMu.RUnlock()

	if !exists {
		limiter = NewTokenBucket(cfg.Rate, cfg.Burst)
		limitersMu.Lock()
		limiters[key] = limiter
		limitersMu.Unlock()
	}
	return limiter
}

// RateLimiter 创建限流中间件
func RateLimiter(config ...RateLimiterConfig) gin.HandlerFunc {
	var cfg RateLimiterConfig
	if len(config) > 0 {
		cfg = config[0]
	} else {
		cfg = DefaultRateLimiterConfig
	}

	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRateLimiterConfig.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimiterConfig.Burst
	}
	if cfg.LimitType == "" {
		cfg.LimitType = DefaultRateLimiterConfig.LimitType
	}

	return func(c *gin.Context) {
		var key string
		switch cfg.LimitType {
		case "ip":
			key = c.ClientIP()
		case "path":
			key = c.Request.URL.Path
		case "combined":
			key = c.ClientIP() + ":" + c.Request.URL.Path
		default:
			if cfg.KeyFunc != nil {
				key = cfg.KeyFunc(c)
			} else {
				key = c.ClientIP()
			}
		}

		if !getLimiter(key, cfg).Allow() {
			response.FailWithMessage(c, code.ErrTooManyRequests, "请求频率过高，请稍后再试", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// IPRateLimiter 按IP限流
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{
		Rate:      rate,
		Burst:     burst,
		LimitType: "ip",
	})
}

// PathRateLimiter 按路径限流
func PathRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{
		Rate:      rate,
		Burst:     burst,
		LimitType: "path",
	})
}

// CombinedRateLimiter 按IP和路径组合限流
func CombinedRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{
		Rate:      rate,
		Burst:     burst,
		LimitType: "combined",
	})
}

// 定期回收闲置超过1小时的限流器
func init() {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			cutoff := time.Now().Add(-time.Hour)
			limitersMu.Lock()
			for key, limiter := range limiters {
				if limiter.lastUsed().Before(cutoff) {
					delete(limiters, key)
				}
			}
			limitersMu.Unlock()
		}
	}()
}
