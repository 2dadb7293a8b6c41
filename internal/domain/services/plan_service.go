package services

import (
	"errors"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/infrastructure/config"

	"gorm.io/gorm"
)

// ErrBenefitDuplicated 同一套餐内权益类型重复
var ErrBenefitDuplicated = errors.New("duplicated benefit type in plan")

// InterfacePlanService defines the membership plan service interface
type InterfacePlanService interface {
	GetPlans(branchID uint, onlyActive bool) ([]models.MembershipPlan, error)
	GetPlanByID(id uint) (*models.MembershipPlan, error)
	CreatePlan(plan *models.MembershipPlan) error
	UpdatePlan(id uint, updates map[string]interface{}, benefits []models.PlanBenefit) (*models.MembershipPlan, error)
	DeactivatePlan(id uint) error
}

// PlanService 提供会籍套餐管理服务
type PlanService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewPlanService 创建一个新的套餐服务
func NewPlanService(db *gorm.DB, cfg *config.Config) InterfacePlanService {
	return &PlanService{DB: db, Config: cfg}
}

// 1 GetPlans 查询分店的套餐列表
func (s *PlanService) GetPlans(branchID uint, onlyActive bool) ([]models.MembershipPlan, error) {
	query := s.DB.Preload("Benefits")
	if branchID > 0 {
		query = query.Where("branch_id = ?", branchID)
	}
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	var plans []models.MembershipPlan
	if err := query.Order("price_paise").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// 2 GetPlanByID 获取套餐详情（含权益）
func (s *PlanService) GetPlanByID(id uint) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	if err := s.DB.Preload("Benefits").First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// 3 CreatePlan 创建套餐，权益一并落库
func (s *PlanService) CreatePlan(plan *models.MembershipPlan) error {
	var branch models.Branch
	if err := s.DB.First(&branch, plan.BranchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBranchNotFound
		}
		return err
	}

	if err := validateBenefits(plan.Benefits); err != nil {
		return err
	}

	plan.Version = 1
	return s.DB.Create(plan).Error
}

// 4 UpdatePlan 更新套餐。
// 未被引用的套餐原地修改；已被有效会籍引用的套餐不可变，
// 改动落到version+1的新套餐行上，原行下架、权益保持原样，老会籍按购买时的权益继续计算。
func (s *PlanService) UpdatePlan(id uint, updates map[string]interface{}, benefits []models.PlanBenefit) (*models.MembershipPlan, error) {
	plan, err := s.GetPlanByID(id)
	if err != nil {
		return nil, err
	}

	if benefits != nil {
		if err := validateBenefits(benefits); err != nil {
			return nil, err
		}
	}

	resultID := id
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var referenced int64
		if err := tx.Model(&models.Membership{}).
			Where("plan_id = ? AND status IN ?", id, []models.MembershipStatus{models.MembershipStatusActive, models.MembershipStatusFrozen}).
			Count(&referenced).Error; err != nil {
			return err
		}

		if referenced > 0 {
			successor := NextPlanVersion(plan, updates, benefits)
			if err := tx.Create(successor).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.MembershipPlan{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
				return err
			}
			resultID = successor.ID
			return nil
		}

		if len(updates) > 0 {
			if err := tx.Model(plan).Updates(updates).Error; err != nil {
				return err
			}
		}

		if benefits != nil {
			if err := tx.Where("plan_id = ?", id).Delete(&models.PlanBenefit{}).Error; err != nil {
				return err
			}
			for i := range benefits {
				benefits[i].ID = 0
				benefits[i].PlanID = id
			}
			if len(benefits) > 0 {
				if err := tx.Create(&benefits).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPlanByID(resultID)
}

// NextPlanVersion 基于原套餐与本次改动组装下一版本的套餐行。
// 未提交的字段沿用原值，未提交权益时复制原权益配置。
func NextPlanVersion(plan *models.MembershipPlan, updates map[string]interface{}, benefits []models.PlanBenefit) *models.MembershipPlan {
	successor := &models.MembershipPlan{
		BranchID:     plan.BranchID,
		Name:         plan.Name,
		Description:  plan.Description,
		PricePaise:   plan.PricePaise,
		DurationDays: plan.DurationDays,
		Version:      plan.Version + 1,
		IsActive:     true,
	}

	if v, ok := updates["name"].(string); ok {
		successor.Name = v
	}
	if v, ok := updates["description"].(string); ok {
		successor.Description = v
	}
	if v, ok := updates["price_paise"].(int64); ok {
		successor.PricePaise = v
	}
	if v, ok := updates["duration_days"].(int); ok {
		successor.DurationDays = v
	}

	if benefits == nil {
		benefits = plan.Benefits
	}
	successor.Benefits = make([]models.PlanBenefit, len(benefits))
	for i, b := range benefits {
		successor.Benefits[i] = models.PlanBenefit{
			BenefitType: b.BenefitType,
			Frequency:   b.Frequency,
			LimitCount:  b.LimitCount,
			Description: b.Description,
		}
	}
	return successor
}

// 5 DeactivatePlan 下架套餐，不影响已有会籍
func (s *PlanService) DeactivatePlan(id uint) error {
	result := s.DB.Model(&models.MembershipPlan{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// validateBenefits 校验权益配置
func validateBenefits(benefits []models.PlanBenefit) error {
	seen := make(map[string]bool, len(benefits))
	for _, b := range benefits {
		if seen[b.BenefitType] {
			return ErrBenefitDuplicated
		}
		seen[b.BenefitType] = true

		switch b.Frequency {
		case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly,
			models.FrequencyUnlimited, models.FrequencyPerMembership:
		default:
			return errors.New("无效的权益周期: " + string(b.Frequency))
		}
		if b.LimitCount != nil && *b.LimitCount < 0 {
			return errors.New("权益次数不能为负数")
		}
	}
	return nil
}
