package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/infrastructure/config"
	"gymcore-http-service/pkg/logger"

	"gorm.io/gorm"
)

// RosterEntry 下发给终端的花名册条目
type RosterEntry struct {
	PersonUUID    string `json:"person_uuid"`
	PersonType    string `json:"person_type"` // member / staff
	Name          string `json:"name"`
	WiegandCode   string `json:"wiegand_code,omitempty"`
	AccessEnabled bool   `json:"access_enabled"`
}

// InterfaceDeviceService defines the access device service interface
type InterfaceDeviceService interface {
	GetAllDevices() ([]models.AccessDevice, error)
	GetDevicesByBranch(branchID uint) ([]models.AccessDevice, error)
	GetDeviceByID(id uint) (*models.AccessDevice, error)
	GetDeviceBySerial(serial string) (*models.AccessDevice, error)
	CreateDevice(device *models.AccessDevice) error
	UpdateDevice(id uint, updates map[string]interface{}) (*models.AccessDevice, error)
	DeleteDevice(id uint) error
	Heartbeat(serial string, status models.DeviceStatus) error
	MarkStaleOffline(threshold time.Duration) (int64, error)
	GetFullRoster(deviceSerial string) ([]RosterEntry, error)
	PullSyncItems(deviceSerial string, limit int) ([]models.DeviceSyncItem, error)
	AckSyncItems(deviceSerial string, itemIDs []uint, success bool) error
	EnqueueRosterChange(branchID uint, personUUID string, operation models.SyncOperation, entry *RosterEntry) error
	SetSyncNotifier(notifier SyncNotifier)
}

// SyncNotifier 花名册有待同步项时通知终端拉取的通道（MQTT实现）
type SyncNotifier interface {
	NotifySyncPending(deviceSerial string) error
}

// DeviceService 提供门禁终端管理与花名册同步服务
type DeviceService struct {
	DB       *gorm.DB
	Config   *config.Config
	Redis    InterfaceRedisService
	Notifier SyncNotifier
}

// NewDeviceService 创建一个新的设备服务
func NewDeviceService(db *gorm.DB, cfg *config.Config, redisService InterfaceRedisService) InterfaceDeviceService {
	return &DeviceService{
		DB:     db,
		Config: cfg,
		Redis:  redisService,
	}
}

// SetSyncNotifier 注入同步通知通道。
// MQTT服务依赖设备服务，通知通道在两者都构造完成后回填。
func (s *DeviceService) SetSyncNotifier(notifier SyncNotifier) {
	s.Notifier = notifier
}

// 1 GetAllDevices 获取所有设备列表
func (s *DeviceService) GetAllDevices() ([]models.AccessDevice, error) {
	var devices []models.AccessDevice
	if err := s.DB.Preload("Branch").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// 2 GetDevicesByBranch 根据分店获取设备列表
func (s *DeviceService) GetDevicesByBranch(branchID uint) ([]models.AccessDevice, error) {
	var devices []models.AccessDevice
	if err := s.DB.Where("branch_id = ?", branchID).Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// 3 GetDeviceByID 根据ID获取设备
func (s *DeviceService) GetDeviceByID(id uint) (*models.AccessDevice, error) {
	var device models.AccessDevice
	if err := s.DB.Preload("Branch").First(&device, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	return &device, nil
}

// 4 GetDeviceBySerial 根据序列号获取设备
func (s *DeviceService) GetDeviceBySerial(serial string) (*models.AccessDevice, error) {
	var device models.AccessDevice
	if err := s.DB.Where("serial_number = ?", serial).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	return &device, nil
}

// 5 CreateDevice 创建新设备
func (s *DeviceService) CreateDevice(device *models.AccessDevice) error {
	// 验证序列号唯一性
	var count int64
	if err := s.DB.Model(&models.AccessDevice{}).Where("serial_number = ?", device.SerialNumber).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("设备序列号已存在")
	}

	// 设置默认状态
	if device.Status == "" {
		device.Status = models.DeviceStatusOffline
	}
	if device.RelayDelay <= 0 {
		device.RelayDelay = 3
	}

	return s.DB.Create(device).Error
}

// 6 UpdateDevice 更新设备信息
func (s *DeviceService) UpdateDevice(id uint, updates map[string]interface{}) (*models.AccessDevice, error) {
	device, err := s.GetDeviceByID(id)
	if err != nil {
		return nil, err
	}

	// 如果更新序列号，需要检查唯一性
	if serialNumber, ok := updates["serial_number"].(string); ok && serialNumber != device.SerialNumber {
		var count int64
		if err := s.DB.Model(&models.AccessDevice{}).Where("serial_number = ? AND id != ?", serialNumber, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("设备序列号已存在")
		}
	}

	if err := s.DB.Model(device).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetDeviceByID(id)
}

// 7 DeleteDevice 删除设备及其未下发的同步项
func (s *DeviceService) DeleteDevice(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", id).Delete(&models.DeviceSyncItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.AccessDevice{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDeviceNotFound
		}
		return nil
	})
}

// 8 Heartbeat 终端心跳，刷新在线状态
func (s *DeviceService) Heartbeat(serial string, status models.DeviceStatus) error {
	if status == "" {
		status = models.DeviceStatusOnline
	}
	now := time.Now()
	result := s.DB.Model(&models.AccessDevice{}).
		Where("serial_number = ?", serial).
		Updates(map[string]interface{}{
			"status":         status,
			"last_heartbeat": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// 9 MarkStaleOffline 把心跳超时的设备置为离线（定时任务调用）
func (s *DeviceService) MarkStaleOffline(threshold time.Duration) (int64, error) {
	cutoff := time.Now().Add(-threshold)
	result := s.DB.Model(&models.AccessDevice{}).
		Where("status = ? AND (last_heartbeat IS NULL OR last_heartbeat < ?)", models.DeviceStatusOnline, cutoff).
		Update("status", models.DeviceStatusOffline)
	return result.RowsAffected, result.Error
}

// 10 GetFullRoster 全量同步：返回分店的完整花名册。
// 已录入人脸的会员（是否放行取决于是否有有效会籍）+ 在职员工。
// 快照短暂缓存在Redis，终端批量重刷时不会反复打库。
func (s *DeviceService) GetFullRoster(deviceSerial string) ([]RosterEntry, error) {
	device, err := s.GetDeviceBySerial(deviceSerial)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("roster:branch:%d", device.BranchID)
	if s.Redis != nil {
		var cached []RosterEntry
		if err := s.Redis.Get(cacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	var members []models.Member
	if err := s.DB.Where("branch_id = ? AND face_enrolled = ?", device.BranchID, true).Find(&members).Error; err != nil {
		return nil, err
	}

	// 一次取出分店内所有有效会籍的member_id
	now := time.Now()
	var activeMemberIDs []uint
	if err := s.DB.Model(&models.Membership{}).
		Where("branch_id = ? AND status = ? AND end_date >= ?", device.BranchID, models.MembershipStatusActive, now).
		Pluck("member_id", &activeMemberIDs).Error; err != nil {
		return nil, err
	}
	activeSet := make(map[uint]bool, len(activeMemberIDs))
	for _, id := range activeMemberIDs {
		activeSet[id] = true
	}

	roster := make([]RosterEntry, 0, len(members))
	for _, m := range members {
		roster = append(roster, RosterEntry{
			PersonUUID:    m.PersonUUID,
			PersonType:    string(models.AccessPersonMember),
			Name:          m.Name,
			WiegandCode:   m.WiegandCode,
			AccessEnabled: activeSet[m.ID],
		})
	}

	var staff []models.Staff
	if err := s.DB.Where("branch_id = ? AND is_active = ? AND person_uuid != ''", device.BranchID, true).Find(&staff).Error; err != nil {
		return nil, err
	}
	for _, st := range staff {
		roster = append(roster, RosterEntry{
			PersonUUID:    st.PersonUUID,
			PersonType:    string(models.AccessPersonStaff),
			Name:          st.Name,
			AccessEnabled: true,
		})
	}

	if s.Redis != nil {
		if err := s.Redis.Set(cacheKey, roster, 5*time.Minute); err != nil {
			logger.Warning("缓存花名册失败: %v", err)
		}
	}
	return roster, nil
}

// 11 PullSyncItems 增量同步：取出待下发的同步项并原子置为syncing。
// 条件更新保证同一项不会被并发拉取两次。
func (s *DeviceService) PullSyncItems(deviceSerial string, limit int) ([]models.DeviceSyncItem, error) {
	device, err := s.GetDeviceBySerial(deviceSerial)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var items []models.DeviceSyncItem
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var pending []models.DeviceSyncItem
		if err := tx.Where("device_id = ? AND status = ?", device.ID, models.SyncItemStatusPending).
			Order("id").Limit(limit).Find(&pending).Error; err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(pending))
		for _, item := range pending {
			ids = append(ids, item.ID)
		}

		result := tx.Model(&models.DeviceSyncItem{}).
			Where("id IN ? AND status = ?", ids, models.SyncItemStatusPending).
			Updates(map[string]interface{}{
				"status":   models.SyncItemStatusSyncing,
				"attempts": gorm.Expr("attempts + 1"),
			})
		if result.Error != nil {
			return result.Error
		}

		// 只返回真正被本次抢占的项
		return tx.Where("id IN ? AND status = ?", ids, models.SyncItemStatusSyncing).Find(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// 12 AckSyncItems 终端回执同步结果
func (s *DeviceService) AckSyncItems(deviceSerial string, itemIDs []uint, success bool) error {
	device, err := s.GetDeviceBySerial(deviceSerial)
	if err != nil {
		return err
	}
	if len(itemIDs) == 0 {
		return nil
	}

	status := models.SyncItemStatusSynced
	if !success {
		status = models.SyncItemStatusFailed
	}
	return s.DB.Model(&models.DeviceSyncItem{}).
		Where("device_id = ? AND id IN ?", device.ID, itemIDs).
		Update("status", status).Error
}

// 13 EnqueueRosterChange 花名册变更入队，扇出到分店的所有设备
func (s *DeviceService) EnqueueRosterChange(branchID uint, personUUID string, operation models.SyncOperation, entry *RosterEntry) error {
	devices, err := s.GetDevicesByBranch(branchID)
	if err != nil {
		return err
	}

	payload := ""
	if entry != nil {
		raw, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		payload = string(raw)
	}

	items := make([]models.DeviceSyncItem, 0, len(devices))
	for _, d := range devices {
		items = append(items, models.DeviceSyncItem{
			DeviceID:   d.ID,
			PersonUUID: personUUID,
			Operation:  operation,
			Payload:    payload,
			Status:     models.SyncItemStatusPending,
		})
	}
	if len(items) == 0 {
		return nil
	}

	if err := s.DB.Create(&items).Error; err != nil {
		return err
	}

	// 花名册已变化，失效缓存快照
	if s.Redis != nil {
		if err := s.Redis.Delete(fmt.Sprintf("roster:branch:%d", branchID)); err != nil {
			logger.Warning("失效花名册缓存失败: %v", err)
		}
	}

	// 通知各终端拉取增量，通知失败不影响入队（终端心跳后仍会轮询）
	if s.Notifier != nil {
		for _, d := range devices {
			if err := s.Notifier.NotifySyncPending(d.SerialNumber); err != nil {
				logger.Warning("下发同步通知失败: 终端=%s err=%v", d.SerialNumber, err)
			}
		}
	}
	return nil
}
