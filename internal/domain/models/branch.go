package models

import "time"

// Branch represents a gym branch (every member, device and invoice belongs to one branch)
type Branch struct {
	BaseModel
	UUID     string `gorm:"type:varchar(36);unique;not null" json:"uuid"` // 对外暴露的分店标识（支付回调等使用）
	Name     string `gorm:"type:varchar(50);not null" json:"name"`
	Code     string `gorm:"type:varchar(10);unique;not null" json:"code"` // 分店编码，用于生成会员号
	Address  string `gorm:"type:varchar(200)" json:"address"`
	Phone    string `gorm:"type:varchar(20)" json:"phone"`
	Timezone string `gorm:"type:varchar(50);default:'Asia/Kolkata'" json:"timezone"` // IANA时区，权益周期窗口按此计算
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// 支付网关配置 - 每个分店独立的回调密钥
	RazorpayWebhookSecret string `gorm:"type:varchar(100)" json:"-"`
	PhonePeSaltKey        string `gorm:"type:varchar(100)" json:"-"`
	PhonePeSaltIndex      string `gorm:"type:varchar(10)" json:"-"`

	// Relations - 关联关系
	Members []Member       `gorm:"foreignKey:BranchID" json:"members,omitempty"`
	Staff   []Staff        `gorm:"foreignKey:BranchID" json:"staff,omitempty"`
	Devices []AccessDevice `gorm:"foreignKey:BranchID" json:"devices,omitempty"`
}

// Location 返回分店时区，解析失败时回退UTC
func (b *Branch) Location() *time.Location {
	if b.Timezone != "" {
		if loc, err := time.LoadLocation(b.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}
