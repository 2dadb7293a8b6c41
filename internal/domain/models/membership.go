package models

import "time"

// MembershipStatus represents the lifecycle status of a membership
type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "active"
	MembershipStatusFrozen    MembershipStatus = "frozen"
	MembershipStatusExpired   MembershipStatus = "expired"
	MembershipStatusCancelled MembershipStatus = "cancelled"
)

// Membership represents a member's purchased plan period.
// 会籍从不删除，只做状态流转。
type Membership struct {
	BaseModel
	MemberID  uint             `gorm:"not null;index" json:"member_id"`
	PlanID    uint             `gorm:"not null;index" json:"plan_id"`
	BranchID  uint             `gorm:"not null;index" json:"branch_id"`
	StartDate time.Time        `gorm:"not null" json:"start_date"`
	EndDate   time.Time        `gorm:"not null" json:"end_date"`
	Status    MembershipStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`

	// 冻结信息
	FrozenAt     *time.Time `json:"frozen_at,omitempty"`
	FreezeReason string     `gorm:"type:varchar(200)" json:"freeze_reason,omitempty"`

	// 到期提醒已投递的时间，防止扫描周期内重复提醒；到期日顺延时清空
	ExpiryNotifiedAt *time.Time `json:"expiry_notified_at,omitempty"`

	PricePaidPaise int64 `json:"price_paid_paise"`

	// Relations - 关联关系
	Member       *Member              `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Plan         *MembershipPlan      `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	UsageRecords []BenefitUsageRecord `gorm:"foreignKey:MembershipID" json:"usage_records,omitempty"`
}

// DaysRemaining 距到期的剩余天数（向上取整，已过期为0）
func (m *Membership) DaysRemaining(now time.Time) int {
	if now.After(m.EndDate) {
		return 0
	}
	return int(m.EndDate.Sub(now).Hours()/24) + 1
}

// CheckInSource represents how a check-in was produced
type CheckInSource string

const (
	CheckInSourceDevice CheckInSource = "device"
	CheckInSourceManual CheckInSource = "manual"
)

// MemberCheckIn represents a member's daily gym entry.
// (membership_id, check_in_date)唯一，用于识别当天重复进场。
type MemberCheckIn struct {
	BaseModel
	MembershipID uint          `gorm:"not null;uniqueIndex:idx_checkin_day" json:"membership_id"`
	MemberID     uint          `gorm:"not null;index" json:"member_id"`
	BranchID     uint          `gorm:"not null" json:"branch_id"`
	CheckInDate  string        `gorm:"type:varchar(10);not null;uniqueIndex:idx_checkin_day" json:"check_in_date"` // YYYY-MM-DD，按分店时区
	CheckInAt    time.Time     `gorm:"not null" json:"check_in_at"`
	Source       CheckInSource `gorm:"type:varchar(10);default:'device'" json:"source"`
}
