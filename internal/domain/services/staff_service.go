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

// ErrStaffNotFound 员工不存在
var ErrStaffNotFound = errors.New("staff not found")

// InterfaceStaffService defines the staff management service interface
type InterfaceStaffService interface {
	GetStaffList(branchID uint, role string, page models.PaginationQuery) ([]models.Staff, int64, error)
	GetStaffByID(id uint) (*models.Staff, error)
	CreateStaff(staff *models.Staff, rawPassword string) error
	UpdateStaff(id uint, updates map[string]interface{}) (*models.Staff, error)
	DeactivateStaff(id uint) error
	GetAttendance(staffID uint, from, to string) ([]models.StaffAttendance, error)
	CheckOut(staffID uint) (*models.StaffAttendance, error)
}

// StaffService 提供员工管理服务
type StaffService struct {
	DB      *gorm.DB
	Config  *config.Config
	Devices InterfaceDeviceService
}

// NewStaffService 创建一个新的员工服务
func NewStaffService(db *gorm.DB, cfg *config.Config, deviceService InterfaceDeviceService) InterfaceStaffService {
	return &StaffService{
		DB:      db,
		Config:  cfg,
		Devices: deviceService,
	}
}

// 1 GetStaffList 分页查询员工
func (s *StaffService) GetStaffList(branchID uint, role string, page models.PaginationQuery) ([]models.Staff, int64, error) {
	if page.PageNum < 1 {
		page.PageNum = 1
	}
	if page.PageSize < 1 || page.PageSize > 100 {
		page.PageSize = 20
	}

	query := s.DB.Model(&models.Staff{})
	if branchID > 0 {
		query = query.Where("branch_id = ?", branchID)
	}
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var staff []models.Staff
	if err := query.Order("created_at DESC").
		Offset((page.PageNum - 1) * page.PageSize).
		Limit(page.PageSize).
		Find(&staff).Error; err != nil {
		return nil, 0, err
	}
	return staff, total, nil
}

// 2 GetStaffByID 获取员工详情
func (s *StaffService) GetStaffByID(id uint) (*models.Staff, error) {
	var staff models.Staff
	if err := s.DB.Preload("Branch").First(&staff, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return &staff, nil
}

// 3 CreateStaff 创建员工。
// 有登录账号的员工密码做bcrypt哈希，person_uuid自动生成并下发到分店终端。
func (s *StaffService) CreateStaff(staff *models.Staff, rawPassword string) error {
	var count int64
	if err := s.DB.Model(&models.Staff{}).Where("phone = ?", staff.Phone).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("手机号已注册")
	}

	var branch models.Branch
	if err := s.DB.First(&branch, staff.BranchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBranchNotFound
		}
		return err
	}

	if rawPassword != "" {
		hashed, err := utils.HashPassword(rawPassword)
		if err != nil {
			return err
		}
		staff.Password = hashed
	}
	if staff.PersonUUID == "" {
		staff.PersonUUID = uuid.NewString()
	}
	if staff.DateJoined == nil {
		now := time.Now()
		staff.DateJoined = &now
	}
	staff.IsActive = true

	if err := s.DB.Create(staff).Error; err != nil {
		return err
	}

	if s.Devices != nil {
		entry := &RosterEntry{
			PersonUUID:    staff.PersonUUID,
			PersonType:    string(models.AccessPersonStaff),
			Name:          staff.Name,
			AccessEnabled: true,
		}
		return s.Devices.EnqueueRosterChange(staff.BranchID, staff.PersonUUID, models.SyncOperationAdd, entry)
	}
	return nil
}

// 4 UpdateStaff 更新员工信息，密码字段单独处理
func (s *StaffService) UpdateStaff(id uint, updates map[string]interface{}) (*models.Staff, error) {
	staff, err := s.GetStaffByID(id)
	if err != nil {
		return nil, err
	}

	if raw, ok := updates["password"].(string); ok {
		if raw == "" {
			delete(updates, "password")
		} else {
			hashed, err := utils.HashPassword(raw)
			if err != nil {
				return nil, err
			}
			updates["password"] = hashed
		}
	}

	if err := s.DB.Model(staff).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetStaffByID(id)
}

// 5 DeactivateStaff 停用员工并从分店终端移除
func (s *StaffService) DeactivateStaff(id uint) error {
	staff, err := s.GetStaffByID(id)
	if err != nil {
		return err
	}

	if err := s.DB.Model(staff).Update("is_active", false).Error; err != nil {
		return err
	}

	if s.Devices != nil && staff.PersonUUID != "" {
		return s.Devices.EnqueueRosterChange(staff.BranchID, staff.PersonUUID, models.SyncOperationDelete, nil)
	}
	return nil
}

// 6 GetAttendance 查询员工考勤记录，日期区间为YYYY-MM-DD
func (s *StaffService) GetAttendance(staffID uint, from, to string) ([]models.StaffAttendance, error) {
	query := s.DB.Where("staff_id = ?", staffID)
	if from != "" {
		query = query.Where("work_date >= ?", from)
	}
	if to != "" {
		query = query.Where("work_date <= ?", to)
	}

	var records []models.StaffAttendance
	if err := query.Order("work_date DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// 7 CheckOut 补记当天签退时间
func (s *StaffService) CheckOut(staffID uint) (*models.StaffAttendance, error) {
	staff, err := s.GetStaffByID(staffID)
	if err != nil {
		return nil, err
	}

	var branch models.Branch
	if err := s.DB.First(&branch, staff.BranchID).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	today := now.In(branch.Location()).Format("2006-01-02")

	var record models.StaffAttendance
	if err := s.DB.Where("staff_id = ? AND work_date = ?", staffID, today).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("今天没有签到记录")
		}
		return nil, err
	}

	record.CheckOutAt = &now
	if err := s.DB.Save(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
