package services

import (
	"errors"
	"time"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/infrastructure/config"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InterfaceBranchService defines the branch management service interface
type InterfaceBranchService interface {
	GetBranches() ([]models.Branch, error)
	GetBranchByID(id uint) (*models.Branch, error)
	GetBranchByUUID(branchUUID string) (*models.Branch, error)
	CreateBranch(branch *models.Branch) error
	UpdateBranch(id uint, updates map[string]interface{}) (*models.Branch, error)
	DeleteBranch(id uint) error
}

// BranchService 提供分店管理服务
type BranchService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewBranchService 创建一个新的分店服务
func NewBranchService(db *gorm.DB, cfg *config.Config) InterfaceBranchService {
	return &BranchService{DB: db, Config: cfg}
}

// 1 GetBranches 获取所有分店
func (s *BranchService) GetBranches() ([]models.Branch, error) {
	var branches []models.Branch
	if err := s.DB.Order("code").Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// 2 GetBranchByID 根据ID获取分店
func (s *BranchService) GetBranchByID(id uint) (*models.Branch, error) {
	var branch models.Branch
	if err := s.DB.First(&branch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}
	return &branch, nil
}

// 3 GetBranchByUUID 根据UUID获取分店（支付回调路由用）
func (s *BranchService) GetBranchByUUID(branchUUID string) (*models.Branch, error) {
	var branch models.Branch
	if err := s.DB.Where("uuid = ?", branchUUID).First(&branch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}
	return &branch, nil
}

// 4 CreateBranch 创建分店。
// 分店编码唯一，时区必须是合法的IANA名称。
func (s *BranchService) CreateBranch(branch *models.Branch) error {
	var count int64
	if err := s.DB.Model(&models.Branch{}).Where("code = ?", branch.Code).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("分店编码已存在")
	}

	if branch.Timezone == "" {
		branch.Timezone = s.Config.DefaultTimezone
	}
	if _, err := time.LoadLocation(branch.Timezone); err != nil {
		return errors.New("无效的时区: " + branch.Timezone)
	}
	if branch.UUID == "" {
		branch.UUID = uuid.NewString()
	}

	return s.DB.Create(branch).Error
}

// 5 UpdateBranch 更新分店信息
func (s *BranchService) UpdateBranch(id uint, updates map[string]interface{}) (*models.Branch, error) {
	branch, err := s.GetBranchByID(id)
	if err != nil {
		return nil, err
	}

	if tz, ok := updates["timezone"].(string); ok && tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, errors.New("无效的时区: " + tz)
		}
	}

	if err := s.DB.Model(branch).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetBranchByID(id)
}

// 6 DeleteBranch 删除分店，仍有会员或终端的分店不允许删除
func (s *BranchService) DeleteBranch(id uint) error {
	var memberCount int64
	if err := s.DB.Model(&models.Member{}).Where("branch_id = ?", id).Count(&memberCount).Error; err != nil {
		return err
	}
	if memberCount > 0 {
		return errors.New("分店下仍有会员，无法删除")
	}

	var deviceCount int64
	if err := s.DB.Model(&models.AccessDevice{}).Where("branch_id = ?", id).Count(&deviceCount).Error; err != nil {
		return err
	}
	if deviceCount > 0 {
		return errors.New("分店下仍有门禁终端，无法删除")
	}

	result := s.DB.Delete(&models.Branch{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBranchNotFound
	}
	return nil
}
