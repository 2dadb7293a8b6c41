package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateMemberCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^GYMBLR\d{7}$`)
	for i := 0; i < 20; i++ {
		code := GenerateMemberCode("BLR")
		assert.True(t, pattern.MatchString(code), "unexpected member code %q", code)
	}
}

func TestGenerateInvoiceNumberFormat(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^INV-202603-BLR-\d{6}$`)
	for i := 0; i < 20; i++ {
		num := GenerateInvoiceNumber("BLR", now)
		assert.True(t, pattern.MatchString(num), "unexpected invoice number %q", num)
	}
}

func TestRandomInt32Varies(t *testing.T) {
	seen := make(map[int32]bool)
	for i := 0; i < 10; i++ {
		seen[RandomInt32()] = true
	}
	// 10次全部相同的概率可以忽略
	assert.Greater(t, len(seen), 1)
}
