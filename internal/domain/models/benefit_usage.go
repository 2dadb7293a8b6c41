package models

import "time"

// BenefitUsageRecord is the append-only log of benefit consumption.
// 余额始终由该表实时汇总得出，正常运行下不修改不删除。
type BenefitUsageRecord struct {
	BaseModel
	MembershipID uint      `gorm:"not null;index" json:"membership_id"`
	BenefitType  string    `gorm:"type:varchar(50);not null;index" json:"benefit_type"`
	UsageDate    time.Time `gorm:"not null" json:"usage_date"`
	UsageCount   int       `gorm:"default:1" json:"usage_count"` // 最小为1，未填按1计
	RecordedBy   string    `gorm:"type:varchar(50)" json:"recorded_by"` // 操作主体，取自令牌身份（staff:ID / admin:ID）或 device:序列号
	BookingID    *uint     `gorm:"index" json:"booking_id,omitempty"`   // 由预约消耗时关联的预约ID
	Notes        string    `gorm:"type:varchar(200)" json:"notes,omitempty"`

	// Relations
	Membership *Membership `gorm:"foreignKey:MembershipID" json:"membership,omitempty"`
}
