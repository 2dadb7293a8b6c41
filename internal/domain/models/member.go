package models

import "time"

// Member represents a gym member
type Member struct {
	BaseModel
	BranchID    uint       `gorm:"not null;index" json:"branch_id"`
	MemberCode  string     `gorm:"type:varchar(20);unique;not null" json:"member_code"`   // 会员号，如 GYMBLR0012345
	PersonUUID  string     `gorm:"type:varchar(36);unique;not null" json:"person_uuid"`   // 人脸终端录入的人员标识
	Name        string     `gorm:"type:varchar(50);not null" json:"name"`
	Phone       string     `gorm:"type:varchar(20);unique;not null" json:"phone"`
	Email       string     `gorm:"type:varchar(100)" json:"email,omitempty"`
	Gender      string     `gorm:"type:varchar(10)" json:"gender,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`

	// 门禁录入信息
	FaceEnrolled bool   `gorm:"default:false" json:"face_enrolled"` // 是否已录入人脸
	WiegandCode  string `gorm:"type:varchar(20)" json:"wiegand_code,omitempty"`

	// Relations - 关联关系
	Branch           *Branch           `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Memberships      []Membership      `gorm:"foreignKey:MemberID" json:"memberships,omitempty"`
	Bookings         []BenefitBooking  `gorm:"foreignKey:MemberID" json:"bookings,omitempty"`
	TrainingPackages []TrainingPackage `gorm:"foreignKey:MemberID" json:"training_packages,omitempty"`
}
