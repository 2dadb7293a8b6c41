package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// 缓存条目
type cacheEntry struct {
	Content    []byte
	Expiration time.Time
}

// 进程内响应缓存
type memoryCache struct {
	sync.RWMutex
	items  map[string]cacheEntry
	hits   uint64
	misses uint64
}

var cache = &memoryCache{
	items: make(map[string]cacheEntry),
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Expiration time.Duration             // 缓存过期时间
	Methods    []string                  // 需要缓存的HTTP方法
	KeyFunc    func(*gin.Context) string // 自定义缓存键生成函数
}

// DefaultCacheConfig 默认缓存配置
var DefaultCacheConfig = CacheConfig{
	Expiration: 5 * time.Minute,
	Methods:    []string{http.MethodGet},
	KeyFunc:    defaultKeyFunc,
}

// defaultKeyFunc 以路径+排序后的查询参数作为缓存键
func defaultKeyFunc(c *gin.Context) string {
	path := c.Request.URL.Path

	queryParams := c.Request.URL.Query()
	var queryKeys []string
	for key := range queryParams {
		queryKeys = append(queryKeys, key)
	}
	sort.Strings(queryKeys)

	var queryString string
	for _, key := range queryKeys {
		values := queryParams[key]
		sort.Strings(values)
		for _, value := range values {
			queryString += key + "=" + value + "&"
		}
	}

	return hashKey(path + "?" + queryString)
}

func hashKey(key string) string {
	hasher := md5.New()
	hasher.Write([]byte(key))
	return hex.EncodeToString(hasher.Sum(nil))
}

// Cache 创建缓存中间件
func Cache(config ...CacheConfig) gin.HandlerFunc {
	var cfg CacheConfig
	if len(config) > 0 {
		cfg = config[0]
	} else {
		cfg = DefaultCacheConfig
	}

	if cfg.Expiration <= 0 {
		cfg.Expiration = DefaultCacheConfig.Expiration
	}
	if len(cfg.Methods) == 0 {
		cfg.Methods = DefaultCacheConfig.Methods
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = DefaultCacheConfig.KeyFunc
	}

	return func(c *gin.Context) {
		methodAllowed := false
		for _, method := range cfg.Methods {
			if c.Request.Method == method {
				methodAllowed = true
				break
			}
		}
		if !methodAllowed {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)

		cache.RLock()
		entry, found := cache.items[key]
		cache.RUnlock()

		if found && entry.Expiration.After(time.Now()) {
			cache.Lock()
			cache.hits++
			cache.Unlock()
			c.Data(http.StatusOK, "application/json; charset=utf-8", entry.Content)
			c.Abort()
			return
		}

		// 缓存未命中，捕获响应
		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		cache.Lock()
		cache.misses++
		if writer.Status() == http.StatusOK {
			cache.items[key] = cacheEntry{
				Content:    writer.body.Bytes(),
				Expiration: time.Now().Add(cfg.Expiration),
			}
		}
		cache.Unlock()
	}
}

// CacheByParams 仅按指定查询参数生成缓存键
func CacheByParams(expiration time.Duration, params ...string) gin.HandlerFunc {
	return Cache(CacheConfig{
		Expiration: expiration,
		Methods:    []string{http.MethodGet},
		KeyFunc: func(c *gin.Context) string {
			keyParts := []string{c.Request.URL.Path}
			for _, param := range params {
				if value := c.Query(param); value != "" {
					keyParts = append(keyParts, param+"="+value)
				}
			}
			return hashKey(strings.Join(keyParts, "&"))
		},
	})
}

// PurgeCache 清除所有缓存
func PurgeCache() {
	cache.Lock()
	cache.items = make(map[string]cacheEntry)
	cache.Unlock()
}

// 自定义响应写入器，用于捕获响应内容
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheStats 获取缓存统计信息
func CacheStats() map[string]interface{} {
	cache.RLock()
	defer cache.RUnlock()

	totalSize := 0
	for _, entry := range cache.items {
		totalSize += len(entry.Content)
	}

	return map[string]interface{}{
		"total_items": len(cache.items),
		"total_bytes": totalSize,
		"hits":        cache.hits,
		"misses":      cache.misses,
	}
}

// 定期清理过期缓存
func init() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			now := time.Now()
			cache.Lock()
			for key, entry := range cache.items {
				if entry.Expiration.Before(now) {
					delete(cache.items, key)
				}
			}
			cache.Unlock()
		}
	}()
}
