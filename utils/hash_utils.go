package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword 对管理员/员工登录密码做bcrypt哈希，成本使用默认值
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash 校验登录密码与库中哈希是否匹配
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
