package services

import (
	"errors"
	"fmt"
	"time"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/infrastructure/config"
	"gymcore-http-service/utils"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// InterfaceJWTService 定义JWT服务接口
type InterfaceJWTService interface {
	GenerateToken(userID uint, role string, branchID *uint) (string, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
	Login(username, password string) (*LoginResult, error)
}

// LoginResult 表示登录结果
type LoginResult struct {
	Token    string `json:"token"`
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	Username string `json:"username"`
	BranchID *uint  `json:"branch_id,omitempty"`
}

// JWTService 提供JWT相关服务
type JWTService struct {
	secretKey string
	issuer    string
	DB        *gorm.DB
}

// JWTClaims 定义JWT令牌的声明结构
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	BranchID *uint  `json:"branch_id,omitempty"` // 员工所属分店，管理员为空
	jwt.RegisteredClaims
}

// NewJWTService 创建一个新的JWT服务
func NewJWTService(cfg *config.Config, db *gorm.DB) InterfaceJWTService {
	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		issuer:    "gymcore-http-service",
		DB:        db,
	}
}

// GenerateToken 生成JWT令牌
func (s *JWTService) GenerateToken(userID uint, role string, branchID *uint) (string, error) {
	// 令牌有效期为24小时
	expirationTime := time.Now().Add(24 * time.Hour)

	claims := &JWTClaims{
		UserID:   userID,
		Role:     role,
		BranchID: branchID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken 验证JWT令牌
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
}

// Login 管理员/员工登录。先查管理员表，再查员工表。
func (s *JWTService) Login(username, password string) (*LoginResult, error) {
	var admin models.Admin
	err := s.DB.Where("username = ?", username).First(&admin).Error
	if err == nil {
		if admin.Status != "active" {
			return nil, errors.New("账户已被禁用")
		}
		if !utils.CheckPasswordHash(password, admin.Password) {
			return nil, errors.New("用户名或密码错误")
		}
		token, err := s.GenerateToken(admin.ID, "admin", nil)
		if err != nil {
			return nil, err
		}
		return &LoginResult{
			Token:    token,
			UserID:   admin.ID,
			Role:     "admin",
			Username: admin.Username,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var staff models.Staff
	if err := s.DB.Where("username = ?", username).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("用户名或密码错误")
		}
		return nil, err
	}
	if !staff.IsActive {
		return nil, errors.New("账户已被禁用")
	}
	if !utils.CheckPasswordHash(password, staff.Password) {
		return nil, errors.New("用户名或密码错误")
	}

	token, err := s.GenerateToken(staff.ID, "staff", &staff.BranchID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:    token,
		UserID:   staff.ID,
		Role:     "staff",
		Username: staff.Username,
		BranchID: &staff.BranchID,
	}, nil
}
