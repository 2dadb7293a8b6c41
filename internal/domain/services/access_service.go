package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/infrastructure/config"
	"gymcore-http-service/pkg/logger"

	"gorm.io/gorm"
)

// ErrDeviceNotFound 设备不存在
var ErrDeviceNotFound = errors.New("device not found")

// LED颜色指令
const (
	LEDGreen = "GREEN"
	LEDRed   = "RED"
	LEDWhite = "WHITE"
)

// 识别结果原因（见 models 包定义）
const (
	AccessReasonValid            = models.AccessReasonValid
	AccessReasonAlreadyCheckedIn = models.AccessReasonAlreadyCheckedIn
	AccessReasonWrongBranch      = models.AccessReasonWrongBranch
	AccessReasonExpired          = models.AccessReasonExpired
	AccessReasonFrozen           = models.AccessReasonFrozen
	AccessReasonNoMembership     = models.AccessReasonNoMembership
	AccessReasonInactive         = models.AccessReasonInactive
	AccessReasonNotFound         = models.AccessReasonNotFound
	AccessReasonUnknown          = models.AccessReasonUnknown
)

// AccessDecision 返回给门禁终端的决策结果
type AccessDecision struct {
	Action        models.AccessAction `json:"action"`
	Message       string              `json:"message"`
	LEDColor      string              `json:"led_color"`
	RelayDelay    int                 `json:"relay_delay"`
	PersonName    string              `json:"person_name,omitempty"`
	MemberCode    string              `json:"member_code,omitempty"`
	PlanName      string              `json:"plan_name,omitempty"`
	DaysRemaining *int                `json:"days_remaining,omitempty"`
}

// InterfaceAccessService 定义门禁决策服务接口
type InterfaceAccessService interface {
	HandleAccessEvent(deviceSerial, personUUID string, confidence float64, ts time.Time) (*AccessDecision, error)
	GetAccessEvents(deviceID, memberID uint, page models.PaginationQuery) ([]models.AccessEvent, int64, error)
}

// AccessService 提供门禁识别决策服务
type AccessService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAccessService 创建一个新的门禁决策服务
func NewAccessService(db *gorm.DB, cfg *config.Config) InterfaceAccessService {
	return &AccessService{
		DB:     db,
		Config: cfg,
	}
}

// DecideMemberAccess 根据会籍校验结果组装会员路径的终端决策。
// 纯函数，便于单测各分支的文案与指令。
func DecideMemberAccess(reason string, member *models.Member, membership *models.Membership, planName string, relayDelay int, now time.Time) AccessDecision {
	switch reason {
	case AccessReasonValid:
		days := membership.DaysRemaining(now)
		return AccessDecision{
			Action:        models.AccessActionOpen,
			Message:       fmt.Sprintf("Welcome %s! %s, %d days left", member.Name, planName, days),
			LEDColor:      LEDGreen,
			RelayDelay:    relayDelay,
			PersonName:    member.Name,
			MemberCode:    member.MemberCode,
			PlanName:      planName,
			DaysRemaining: &days,
		}
	case AccessReasonAlreadyCheckedIn:
		// 当天重复进场按放行处理（幂等重入）
		days := membership.DaysRemaining(now)
		return AccessDecision{
			Action:        models.AccessActionOpen,
			Message:       fmt.Sprintf("Welcome back, %s!", member.Name),
			LEDColor:      LEDGreen,
			RelayDelay:    relayDelay,
			PersonName:    member.Name,
			MemberCode:    member.MemberCode,
			PlanName:      planName,
			DaysRemaining: &days,
		}
	case AccessReasonWrongBranch:
		return AccessDecision{
			Action:     models.AccessActionDenied,
			Message:    "This membership is valid at another branch",
			LEDColor:   LEDRed,
			PersonName: member.Name,
			MemberCode: member.MemberCode,
		}
	case AccessReasonExpired:
		return AccessDecision{
			Action:     models.AccessActionDenied,
			Message:    "Membership expired. Please renew at reception",
			LEDColor:   LEDRed,
			PersonName: member.Name,
			MemberCode: member.MemberCode,
		}
	case AccessReasonFrozen:
		return AccessDecision{
			Action:     models.AccessActionDenied,
			Message:    "Membership is frozen. Please see reception",
			LEDColor:   LEDRed,
			PersonName: member.Name,
			MemberCode: member.MemberCode,
		}
	case AccessReasonNoMembership:
		return AccessDecision{
			Action:     models.AccessActionDenied,
			Message:    "No active membership found",
			LEDColor:   LEDRed,
			PersonName: member.Name,
			MemberCode: member.MemberCode,
		}
	default:
		// 未知原因统一引导到前台
		return AccessDecision{
			Action:     models.AccessActionDenied,
			Message:    "Please see reception",
			LEDColor:   LEDRed,
			PersonName: member.Name,
			MemberCode: member.MemberCode,
		}
	}
}

// DecideStaffAccess 员工路径的终端决策
func DecideStaffAccess(reason string, staff *models.Staff, relayDelay int) AccessDecision {
	switch reason {
	case AccessReasonValid:
		return AccessDecision{
			Action:     models.AccessActionOpen,
			Message:    fmt.Sprintf("Hello %s", staff.Name),
			LEDColor:   LEDGreen,
			RelayDelay: relayDelay,
			PersonName: staff.Name,
		}
	case AccessReasonWrongBranch:
		return AccessDecision{
			Action:     models.AccessActionDenied,
			Message:    "Access not permitted at this branch",
			LEDColor:   LEDRed,
			PersonName: staff.Name,
		}
	default: // inactive
		return AccessDecision{
			Action:     models.AccessActionDenied,
			Message:    "Please see reception",
			LEDColor:   LEDRed,
			PersonName: staff.Name,
		}
	}
}

// DecideUnknownPerson 无法识别人员时的终端决策
func DecideUnknownPerson() AccessDecision {
	return AccessDecision{
		Action:   models.AccessActionDenied,
		Message:  "Not recognized. Please register at reception",
		LEDColor: LEDWhite,
	}
}

// EvaluateMembershipValidity 评估会员当前会籍的有效性，返回会籍与原因码。
// 取end_date最晚的active/frozen会籍做判定。
func EvaluateMembershipValidity(memberships []models.Membership, now time.Time) (*models.Membership, string) {
	var candidate *models.Membership
	for i := range memberships {
		m := &memberships[i]
		if m.Status != models.MembershipStatusActive && m.Status != models.MembershipStatusFrozen {
			continue
		}
		if candidate == nil || m.EndDate.After(candidate.EndDate) {
			candidate = m
		}
	}

	if candidate == nil {
		return nil, AccessReasonNoMembership
	}
	if candidate.Status == models.MembershipStatusFrozen {
		return candidate, AccessReasonFrozen
	}
	if now.After(candidate.EndDate) {
		return candidate, AccessReasonExpired
	}
	return candidate, AccessReasonValid
}

// 1 HandleAccessEvent 处理终端上报的一次人脸识别事件。
// 状态机: 设备 -> 会员 -> 员工 -> 未识别；除设备不存在外所有分支都落一条审计记录，
// 且审计与进场副作用都在响应组装前持久化。
func (s *AccessService) HandleAccessEvent(deviceSerial, personUUID string, confidence float64, ts time.Time) (*AccessDecision, error) {
	var device models.AccessDevice
	if err := s.DB.Where("serial_number = ?", deviceSerial).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	if ts.IsZero() {
		ts = time.Now()
	}

	// 会员路径
	var member models.Member
	err := s.DB.Preload("Branch").Where("person_uuid = ?", personUUID).First(&member).Error
	if err == nil {
		return s.handleMemberAccess(&device, &member, personUUID, confidence, ts)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 员工路径
	var staff models.Staff
	err = s.DB.Where("person_uuid = ?", personUUID).First(&staff).Error
	if err == nil {
		return s.handleStaffAccess(&device, &staff, personUUID, confidence, ts)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 未识别人员
	decision := DecideUnknownPerson()
	if err := s.appendAuditEvent(&device, personUUID, models.AccessPersonUnknown, 0, confidence, decision, AccessReasonNotFound, ts); err != nil {
		return nil, err
	}
	return &decision, nil
}

// handleMemberAccess 会员识别分支
func (s *AccessService) handleMemberAccess(device *models.AccessDevice, member *models.Member, personUUID string, confidence float64, ts time.Time) (*AccessDecision, error) {
	loc := time.UTC
	if member.Branch != nil {
		loc = member.Branch.Location()
	}

	// 跨分店直接拒绝，不再做会籍判定
	if member.BranchID != device.BranchID {
		decision := DecideMemberAccess(AccessReasonWrongBranch, member, nil, "", 0, ts)
		if err := s.appendAuditEvent(device, personUUID, models.AccessPersonMember, member.ID, confidence, decision, AccessReasonWrongBranch, ts); err != nil {
			return nil, err
		}
		return &decision, nil
	}

	var memberships []models.Membership
	if err := s.DB.Preload("Plan").Where("member_id = ?", member.ID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	membership, reason := EvaluateMembershipValidity(memberships, ts)
	planName := ""
	if membership != nil && membership.Plan != nil {
		planName = membership.Plan.Name
	}

	if reason == AccessReasonValid {
		// 先落进场记录，提交成功才组装放行响应；
		// 当天已有记录（唯一索引兜底）按幂等重入放行
		checkInDate := ts.In(loc).Format("2006-01-02")
		var existing int64
		if err := s.DB.Model(&models.MemberCheckIn{}).
			Where("membership_id = ? AND check_in_date = ?", membership.ID, checkInDate).
			Count(&existing).Error; err != nil {
			return nil, err
		}
		if existing > 0 {
			reason = AccessReasonAlreadyCheckedIn
		} else {
			checkIn := &models.MemberCheckIn{
				MembershipID: membership.ID,
				MemberID:     member.ID,
				BranchID:     device.BranchID,
				CheckInDate:  checkInDate,
				CheckInAt:    ts,
				Source:       models.CheckInSourceDevice,
			}
			if err := s.DB.Create(checkIn).Error; err != nil {
				// 并发下同日重复插入会触发唯一索引冲突，同样按重入处理
				if isDuplicateKeyError(err) {
					reason = AccessReasonAlreadyCheckedIn
				} else {
					return nil, err
				}
			}
		}
	}

	decision := DecideMemberAccess(reason, member, membership, planName, device.RelayDelay, ts)
	if err := s.appendAuditEvent(device, personUUID, models.AccessPersonMember, member.ID, confidence, decision, reason, ts); err != nil {
		return nil, err
	}
	return &decision, nil
}

// handleStaffAccess 员工识别分支
func (s *AccessService) handleStaffAccess(device *models.AccessDevice, staff *models.Staff, personUUID string, confidence float64, ts time.Time) (*AccessDecision, error) {
	reason := AccessReasonValid
	if !staff.IsActive {
		reason = AccessReasonInactive
	} else if staff.BranchID != device.BranchID {
		reason = AccessReasonWrongBranch
	}

	if reason == AccessReasonValid {
		// 员工放行同时登记考勤，当天已有记录则忽略
		workDate := ts.Format("2006-01-02")
		attendance := &models.StaffAttendance{
			StaffID:   staff.ID,
			BranchID:  device.BranchID,
			WorkDate:  workDate,
			CheckInAt: ts,
			Source:    models.CheckInSourceDevice,
		}
		if err := s.DB.Create(attendance).Error; err != nil && !isDuplicateKeyError(err) {
			return nil, err
		}
	}

	decision := DecideStaffAccess(reason, staff, device.RelayDelay)
	if err := s.appendAuditEvent(device, personUUID, models.AccessPersonStaff, staff.ID, confidence, decision, reason, ts); err != nil {
		return nil, err
	}
	return &decision, nil
}

// appendAuditEvent 落门禁审计记录，必须在响应返回前完成
func (s *AccessService) appendAuditEvent(device *models.AccessDevice, personUUID string, personType models.AccessPersonType, personID uint, confidence float64, decision AccessDecision, reason string, ts time.Time) error {
	event := &models.AccessEvent{
		DeviceID:       device.ID,
		PersonUUID:     personUUID,
		PersonType:     personType,
		PersonID:       personID,
		Confidence:     confidence,
		Action:         decision.Action,
		Reason:         reason,
		DisplayMessage: decision.Message,
		OccurredAt:     ts,
	}
	if err := s.DB.Create(event).Error; err != nil {
		logger.Error("写入门禁审计记录失败: device=%s person=%s err=%v", device.SerialNumber, personUUID, err)
		return err
	}
	return nil
}

// 2 GetAccessEvents 分页查询门禁审计记录
func (s *AccessService) GetAccessEvents(deviceID, memberID uint, page models.PaginationQuery) ([]models.AccessEvent, int64, error) {
	if page.PageNum < 1 {
		page.PageNum = 1
	}
	if page.PageSize < 1 || page.PageSize > 100 {
		page.PageSize = 20
	}

	query := s.DB.Model(&models.AccessEvent{})
	if deviceID > 0 {
		query = query.Where("device_id = ?", deviceID)
	}
	if memberID > 0 {
		query = query.Where("person_type = ? AND person_id = ?", models.AccessPersonMember, memberID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.AccessEvent
	if err := query.Order("occurred_at DESC").
		Offset((page.PageNum - 1) * page.PageSize).
		Limit(page.PageSize).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// isDuplicateKeyError 判断是否为唯一索引冲突
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// MySQL 1062
	return strings.Contains(err.Error(), "Duplicate entry")
}
