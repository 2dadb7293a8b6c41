package services

import (
	"errors"
	"time"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/infrastructure/config"
	"gymcore-http-service/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrMemberNotFound 会员不存在
var ErrMemberNotFound = errors.New("member not found")

// InterfaceMemberService defines the member service interface
type InterfaceMemberService interface {
	GetMembers(branchID uint, page models.PaginationQuery) ([]models.Member, int64, error)
	GetMemberByID(id uint) (*models.Member, error)
	GetMemberByCode(memberCode string) (*models.Member, error)
	CreateMember(member *models.Member) error
	UpdateMember(id uint, updates map[string]interface{}) (*models.Member, error)
	DeleteMember(id uint) error
	EnrollFace(id uint, wiegandCode string) (*models.Member, error)
}

// MemberService 提供会员管理服务
type MemberService struct {
	DB      *gorm.DB
	Config  *config.Config
	Devices InterfaceDeviceService
}

// NewMemberService 创建一个新的会员服务
func NewMemberService(db *gorm.DB, cfg *config.Config, deviceService InterfaceDeviceService) InterfaceMemberService {
	return &MemberService{
		DB:      db,
		Config:  cfg,
		Devices: deviceService,
	}
}

// 1 GetMembers 分页查询会员
func (s *MemberService) GetMembers(branchID uint, page models.PaginationQuery) ([]models.Member, int64, error) {
	if page.PageNum < 1 {
		page.PageNum = 1
	}
	if page.PageSize < 1 || page.PageSize > 100 {
		page.PageSize = 20
	}

	query := s.DB.Model(&models.Member{})
	if branchID > 0 {
		query = query.Where("branch_id = ?", branchID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []models.Member
	order := "created_at"
	if page.Desc {
		order = "created_at DESC"
	}
	if err := query.Order(order).
		Offset((page.PageNum - 1) * page.PageSize).
		Limit(page.PageSize).
		Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// 2 GetMemberByID 根据ID获取会员（带会籍）
func (s *MemberService) GetMemberByID(id uint) (*models.Member, error) {
	var member models.Member
	if err := s.DB.Preload("Branch").Preload("Memberships.Plan").First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// 3 GetMemberByCode 根据会员号获取会员
func (s *MemberService) GetMemberByCode(memberCode string) (*models.Member, error) {
	var member models.Member
	if err := s.DB.Preload("Memberships.Plan").Where("member_code = ?", memberCode).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// 4 CreateMember 创建会员。
// 自动生成会员号与person_uuid，手机号唯一。
func (s *MemberService) CreateMember(member *models.Member) error {
	var count int64
	if err := s.DB.Model(&models.Member{}).Where("phone = ?", member.Phone).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("手机号已注册")
	}

	var branch models.Branch
	if err := s.DB.First(&branch, member.BranchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBranchNotFound
		}
		return err
	}

	if member.MemberCode == "" {
		member.MemberCode = utils.GenerateMemberCode(branch.Code)
	}
	if member.PersonUUID == "" {
		member.PersonUUID = uuid.NewString()
	}

	return s.DB.Create(member).Error
}

// 5 UpdateMember 更新会员信息。
// 已录入人脸的会员资料变化要下发到分店终端。
func (s *MemberService) UpdateMember(id uint, updates map[string]interface{}) (*models.Member, error) {
	member, err := s.GetMemberByID(id)
	if err != nil {
		return nil, err
	}

	if phone, ok := updates["phone"].(string); ok && phone != member.Phone {
		var count int64
		if err := s.DB.Model(&models.Member{}).Where("phone = ? AND id != ?", phone, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("手机号已注册")
		}
	}

	if err := s.DB.Model(member).Updates(updates).Error; err != nil {
		return nil, err
	}

	updated, err := s.GetMemberByID(id)
	if err != nil {
		return nil, err
	}

	if updated.FaceEnrolled && s.Devices != nil {
		entry := &RosterEntry{
			PersonUUID:    updated.PersonUUID,
			PersonType:    string(models.AccessPersonMember),
			Name:          updated.Name,
			WiegandCode:   updated.WiegandCode,
			AccessEnabled: true,
		}
		if err := s.Devices.EnqueueRosterChange(updated.BranchID, updated.PersonUUID, models.SyncOperationUpdate, entry); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// 6 DeleteMember 删除会员，同时通知终端移除人脸
func (s *MemberService) DeleteMember(id uint) error {
	member, err := s.GetMemberByID(id)
	if err != nil {
		return err
	}

	if err := s.DB.Delete(&models.Member{}, id).Error; err != nil {
		return err
	}

	if member.FaceEnrolled && s.Devices != nil {
		return s.Devices.EnqueueRosterChange(member.BranchID, member.PersonUUID, models.SyncOperationDelete, nil)
	}
	return nil
}

// 7 EnrollFace 标记会员已完成人脸录入并下发到分店终端
func (s *MemberService) EnrollFace(id uint, wiegandCode string) (*models.Member, error) {
	member, err := s.GetMemberByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"face_enrolled": true,
		"updated_at":    time.Now(),
	}
	if wiegandCode != "" {
		updates["wiegand_code"] = wiegandCode
	}
	if err := s.DB.Model(member).Updates(updates).Error; err != nil {
		return nil, err
	}

	if s.Devices != nil {
		entry := &RosterEntry{
			PersonUUID:    member.PersonUUID,
			PersonType:    string(models.AccessPersonMember),
			Name:          member.Name,
			WiegandCode:   wiegandCode,
			AccessEnabled: true,
		}
		if err := s.Devices.EnqueueRosterChange(member.BranchID, member.PersonUUID, models.SyncOperationAdd, entry); err != nil {
			return nil, err
		}
	}
	return s.GetMemberByID(id)
}
