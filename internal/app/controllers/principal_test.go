package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func principalContext() *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	return c
}

func TestActingPrincipalFromClaims(t *testing.T) {
	c := principalContext()
	// 鉴权中间件写入的claims数字为float64
	c.Set("role", "staff")
	c.Set("userID", float64(12))

	assert.Equal(t, "staff:12", ActingPrincipal(c))
}

func TestActingPrincipalAdmin(t *testing.T) {
	c := principalContext()
	c.Set("role", "admin")
	c.Set("userID", float64(1))

	assert.Equal(t, "admin:1", ActingPrincipal(c))
}

func TestActingPrincipalMissingClaims(t *testing.T) {
	// 未经过鉴权中间件时不沿用任何请求方输入
	assert.Equal(t, "unknown", ActingPrincipal(principalContext()))

	c := principalContext()
	c.Set("role", "staff")
	assert.Equal(t, "staff", ActingPrincipal(c))
}
