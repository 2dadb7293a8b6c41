package models

// BenefitFrequency represents the entitlement window of a plan benefit
type BenefitFrequency string

const (
	FrequencyDaily         BenefitFrequency = "daily"
	FrequencyWeekly        BenefitFrequency = "weekly"
	FrequencyMonthly       BenefitFrequency = "monthly"
	FrequencyUnlimited     BenefitFrequency = "unlimited"
	FrequencyPerMembership BenefitFrequency = "per_membership"
)

// MembershipPlan represents a named bundle of benefit grants sold by a branch
type MembershipPlan struct {
	BaseModel
	BranchID     uint   `gorm:"not null;index" json:"branch_id"`
	Name         string `gorm:"type:varchar(50);not null" json:"name"`
	Description  string `gorm:"type:varchar(200)" json:"description,omitempty"`
	PricePaise   int64  `gorm:"not null" json:"price_paise"` // 价格，单位paise
	DurationDays int    `gorm:"not null" json:"duration_days"`
	Version      int    `gorm:"default:1" json:"version"` // 被有效会籍引用后修改会递增版本
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	// Relations - 关联关系
	Branch   *Branch       `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Benefits []PlanBenefit `gorm:"foreignKey:PlanID" json:"benefits,omitempty"`
}

// PlanBenefit represents a single benefit grant inside a plan.
// LimitCount为nil或frequency为unlimited时额度不限。
type PlanBenefit struct {
	BaseModel
	PlanID      uint             `gorm:"not null;index" json:"plan_id"`
	BenefitType string           `gorm:"type:varchar(50);not null" json:"benefit_type"` // 如 gym_access, sauna_session, ice_bath
	Frequency   BenefitFrequency `gorm:"type:varchar(20);not null" json:"frequency"`
	LimitCount  *int             `json:"limit_count"` // 周期内允许的次数，nil表示不限
	Description string           `gorm:"type:varchar(200)" json:"description,omitempty"`
}

// IsUnlimited 权益是否为不限次数
func (b *PlanBenefit) IsUnlimited() bool {
	return b.Frequency == FrequencyUnlimited || b.LimitCount == nil
}
