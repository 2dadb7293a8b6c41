package utils

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// RandomInt32 生成一个安全的随机32位整数
func RandomInt32() int32 {
	var num int32
	err := binary.Read(rand.Reader, binary.BigEndian, &num)
	if err != nil {
		panic("generate random int32 failed")
	}

	return num
}

// GenerateMemberCode 生成会员号，格式: GYM + 分店编码 + 7位随机数字
func GenerateMemberCode(branchCode string) string {
	n := RandomInt32()
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf("GYM%s%07d", branchCode, n%10000000)
}

// GenerateInvoiceNumber 生成账单编号，格式: INV-YYYYMM-分店编码-6位随机数字
func GenerateInvoiceNumber(branchCode string, now time.Time) string {
	n := RandomInt32()
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf("INV-%s-%s-%06d", now.Format("200601"), branchCode, n%1000000)
}
