package services

import (
	"errors"
	"time"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/infrastructure/config"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 权益相关的业务错误
var (
	ErrMembershipNotFound  = errors.New("membership not found")
	ErrMembershipNotActive = errors.New("membership not active")
	ErrBenefitNotInPlan    = errors.New("benefit not included in plan")
	ErrBenefitExhausted    = errors.New("benefit limit reached")
)

// BenefitBalance 单个权益的余额快照
type BenefitBalance struct {
	BenefitType string                  `json:"benefit_type"`
	Frequency   models.BenefitFrequency `json:"frequency"`
	LimitCount  *int                    `json:"limit_count"`
	Used        int                     `json:"used"`
	Remaining   *int                    `json:"remaining"` // 不限次数时为null
	IsUnlimited bool                    `json:"is_unlimited"`
}

// UsageValidation 权益使用校验结果。拒绝不是异常，是正常返回值。
type UsageValidation struct {
	Valid     bool   `json:"valid"`
	Message   string `json:"message,omitempty"`
	Remaining *int   `json:"remaining,omitempty"`
}

// PeriodStart 计算某频率在loc时区下当前周期的起点。
// 返回的bool为false表示该频率没有时间窗口（unlimited）。
// 周以日历周日为起点，月以当月1日为起点，per_membership以会籍开始日为起点。
func PeriodStart(frequency models.BenefitFrequency, membershipStart, now time.Time, loc *time.Location) (time.Time, bool) {
	local := now.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	switch frequency {
	case models.FrequencyDaily:
		return dayStart, true
	case models.FrequencyWeekly:
		// Weekday()周日为0，直接回退到本周日零点
		return dayStart.AddDate(0, 0, -int(local.Weekday())), true
	case models.FrequencyMonthly:
		return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc), true
	case models.FrequencyPerMembership:
		return membershipStart, true
	default:
		return time.Time{}, false
	}
}

// CalculateBenefitBalances 权益余额计算引擎。
// 纯函数，无任何I/O：给定套餐权益、使用记录、会籍开始日和分店时区，
// 算出每个权益在当前周期内的已用与剩余。
func CalculateBenefitBalances(
	benefits []models.PlanBenefit,
	usageRecords []models.BenefitUsageRecord,
	membershipStart time.Time,
	now time.Time,
	loc *time.Location,
) []BenefitBalance {
	if loc == nil {
		loc = time.UTC
	}

	balances := make([]BenefitBalance, 0, len(benefits))
	for _, benefit := range benefits {
		balance := BenefitBalance{
			BenefitType: benefit.BenefitType,
			Frequency:   benefit.Frequency,
			LimitCount:  benefit.LimitCount,
		}

		// 不限次数：不统计窗口，remaining为null
		if benefit.IsUnlimited() {
			balance.IsUnlimited = true
			balance.Used = sumUsage(usageRecords, benefit.BenefitType, time.Time{}, false)
			balances = append(balances, balance)
			continue
		}

		windowStart, hasWindow := PeriodStart(benefit.Frequency, membershipStart, now, loc)
		balance.Used = sumUsage(usageRecords, benefit.BenefitType, windowStart, hasWindow)

		// remaining = max(0, limit - used)，永不为负
		remaining := *benefit.LimitCount - balance.Used
		if remaining < 0 {
			remaining = 0
		}
		balance.Remaining = &remaining
		balances = append(balances, balance)
	}

	return balances
}

// sumUsage 汇总指定权益在窗口内的使用次数，usage_count未填按1计
func sumUsage(records []models.BenefitUsageRecord, benefitType string, windowStart time.Time, hasWindow bool) int {
	used := 0
	for _, r := range records {
		if r.BenefitType != benefitType {
			continue
		}
		if hasWindow && r.UsageDate.Before(windowStart) {
			continue
		}
		count := r.UsageCount
		if count < 1 {
			count = 1
		}
		used += count
	}
	return used
}

// InterfaceBenefitService 定义权益服务接口
type InterfaceBenefitService interface {
	GetBalances(membershipID uint) ([]BenefitBalance, error)
	ValidateUsage(membershipID uint, benefitType string) (*UsageValidation, error)
	RecordUsage(membershipID uint, benefitType string, usageCount int, recordedBy, notes string, bookingID *uint) (*models.BenefitUsageRecord, error)
	RecordUsageTx(tx *gorm.DB, membershipID uint, benefitType string, usageCount int, recordedBy, notes string, bookingID *uint) (*models.BenefitUsageRecord, error)
	GetUsageHistory(membershipID uint, benefitType string) ([]models.BenefitUsageRecord, error)
}

// BenefitService 提供权益余额计算、使用校验与登记服务
type BenefitService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewBenefitService 创建一个新的权益服务
func NewBenefitService(db *gorm.DB, cfg *config.Config) InterfaceBenefitService {
	return &BenefitService{
		DB:     db,
		Config: cfg,
	}
}

// loadMembershipContext 取会籍+套餐权益+分店时区
func (s *BenefitService) loadMembershipContext(db *gorm.DB, membershipID uint, lock bool) (*models.Membership, *time.Location, error) {
	var membership models.Membership
	query := db.Preload("Plan.Benefits")
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&membership, membershipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrMembershipNotFound
		}
		return nil, nil, err
	}

	loc, err := s.branchLocation(db, membership.BranchID)
	if err != nil {
		return nil, nil, err
	}
	return &membership, loc, nil
}

// branchLocation 取分店时区，分店缺失时回退配置的默认时区
func (s *BenefitService) branchLocation(db *gorm.DB, branchID uint) (*time.Location, error) {
	var branch models.Branch
	if err := db.First(&branch, branchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if loc, lerr := time.LoadLocation(s.Config.DefaultTimezone); lerr == nil {
				return loc, nil
			}
			return time.UTC, nil
		}
		return nil, err
	}
	return branch.Location(), nil
}

// 1 GetBalances 计算会籍当前的全部权益余额
func (s *BenefitService) GetBalances(membershipID uint) ([]BenefitBalance, error) {
	membership, loc, err := s.loadMembershipContext(s.DB, membershipID, false)
	if err != nil {
		return nil, err
	}

	var records []models.BenefitUsageRecord
	if err := s.DB.Where("membership_id = ?", membershipID).Find(&records).Error; err != nil {
		return nil, err
	}

	var benefits []models.PlanBenefit
	if membership.Plan != nil {
		benefits = membership.Plan.Benefits
	}
	return CalculateBenefitBalances(benefits, records, membership.StartDate, time.Now(), loc), nil
}

// 2 ValidateUsage 校验某权益当前能否使用。
// 该校验是给前端/前台的软校验，最终额度由RecordUsage在事务内强制。
func (s *BenefitService) ValidateUsage(membershipID uint, benefitType string) (*UsageValidation, error) {
	membership, loc, err := s.loadMembershipContext(s.DB, membershipID, false)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			// 会籍不存在按失败关闭处理
			return &UsageValidation{Valid: false, Message: "Membership not found"}, nil
		}
		return nil, err
	}

	if membership.Status != models.MembershipStatusActive {
		return &UsageValidation{Valid: false, Message: "Membership is not active"}, nil
	}

	benefit := findBenefit(membership.Plan, benefitType)
	if benefit == nil {
		return &UsageValidation{Valid: false, Message: "Benefit not included in plan"}, nil
	}
	if benefit.IsUnlimited() {
		return &UsageValidation{Valid: true}, nil
	}

	// 每次都从使用记录重新汇总，不走缓存
	var records []models.BenefitUsageRecord
	if err := s.DB.Where("membership_id = ? AND benefit_type = ?", membershipID, benefitType).Find(&records).Error; err != nil {
		return nil, err
	}

	balances := CalculateBenefitBalances([]models.PlanBenefit{*benefit}, records, membership.StartDate, time.Now(), loc)
	remaining := *balances[0].Remaining
	result := &UsageValidation{Valid: remaining > 0, Remaining: &remaining}
	if !result.Valid {
		result.Message = "Benefit limit reached for current period"
	}
	return result, nil
}

// 3 RecordUsage 登记一次权益使用。
// 在事务内对会籍行加锁后重新汇总余额，额度不足直接返回ErrBenefitExhausted，
// 避免两次独立请求同时通过校验导致超额。
func (s *BenefitService) RecordUsage(membershipID uint, benefitType string, usageCount int, recordedBy, notes string, bookingID *uint) (*models.BenefitUsageRecord, error) {
	var record *models.BenefitUsageRecord
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		r, err := s.RecordUsageTx(tx, membershipID, benefitType, usageCount, recordedBy, notes, bookingID)
		if err != nil {
			return err
		}
		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// 4 RecordUsageTx 在调用方事务内登记权益使用（预约扣减复用）
func (s *BenefitService) RecordUsageTx(tx *gorm.DB, membershipID uint, benefitType string, usageCount int, recordedBy, notes string, bookingID *uint) (*models.BenefitUsageRecord, error) {
	if usageCount < 1 {
		usageCount = 1
	}

	membership, loc, err := s.loadMembershipContext(tx, membershipID, true)
	if err != nil {
		return nil, err
	}
	if membership.Status != models.MembershipStatusActive {
		return nil, ErrMembershipNotActive
	}

	benefit := findBenefit(membership.Plan, benefitType)
	if benefit == nil {
		return nil, ErrBenefitNotInPlan
	}

	if !benefit.IsUnlimited() {
		var records []models.BenefitUsageRecord
		if err := tx.Where("membership_id = ? AND benefit_type = ?", membershipID, benefitType).Find(&records).Error; err != nil {
			return nil, err
		}
		balances := CalculateBenefitBalances([]models.PlanBenefit{*benefit}, records, membership.StartDate, time.Now(), loc)
		if *balances[0].Remaining < usageCount {
			return nil, ErrBenefitExhausted
		}
	}

	record := &models.BenefitUsageRecord{
		MembershipID: membershipID,
		BenefitType:  benefitType,
		UsageDate:    time.Now(),
		UsageCount:   usageCount,
		RecordedBy:   recordedBy,
		BookingID:    bookingID,
		Notes:        notes,
	}
	if err := tx.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// 5 GetUsageHistory 查询会籍的权益使用记录
func (s *BenefitService) GetUsageHistory(membershipID uint, benefitType string) ([]models.BenefitUsageRecord, error) {
	var records []models.BenefitUsageRecord
	query := s.DB.Where("membership_id = ?", membershipID)
	if benefitType != "" {
		query = query.Where("benefit_type = ?", benefitType)
	}
	if err := query.Order("usage_date DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// findBenefit 在套餐中查找指定类型的权益
func findBenefit(plan *models.MembershipPlan, benefitType string) *models.PlanBenefit {
	if plan == nil {
		return nil
	}
	for i := range plan.Benefits {
		if plan.Benefits[i].BenefitType == benefitType {
			return &plan.Benefits[i]
		}
	}
	return nil
}
