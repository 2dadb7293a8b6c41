package models

import "time"

// StaffRole represents the role of a gym staff member
type StaffRole string

const (
	StaffRoleTrainer      StaffRole = "trainer"
	StaffRoleReceptionist StaffRole = "receptionist"
	StaffRoleManager      StaffRole = "manager"
	StaffRoleHousekeeping StaffRole = "housekeeping"
)

// Staff represents gym staff (trainers, receptionists, managers...)
type Staff struct {
	BaseModel
	BranchID   uint      `gorm:"not null;index" json:"branch_id"`
	Role       StaffRole `gorm:"type:varchar(20);not null" json:"role"`
	PersonUUID string    `gorm:"type:varchar(36);unique" json:"person_uuid,omitempty"` // 人脸终端录入的人员标识
	Name       string    `gorm:"type:varchar(50);not null" json:"name"`
	Phone      string    `gorm:"type:varchar(20);unique;not null" json:"phone"`
	Email      string    `gorm:"type:varchar(100)" json:"email,omitempty"`

	// 登录凭据（前台/店长后台登录）
	Username string `gorm:"type:varchar(50);unique" json:"username,omitempty"`
	Password string `gorm:"type:varchar(100)" json:"-"` // bcrypt哈希

	SalaryPaise int64      `json:"salary_paise,omitempty"`
	DateJoined  *time.Time `json:"date_joined,omitempty"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`

	// Relations - 关联关系
	Branch      *Branch           `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Attendances []StaffAttendance `gorm:"foreignKey:StaffID" json:"attendances,omitempty"`
}

// StaffAttendance represents a staff member's daily attendance record
type StaffAttendance struct {
	BaseModel
	StaffID    uint          `gorm:"not null;uniqueIndex:idx_attendance_day" json:"staff_id"`
	BranchID   uint          `gorm:"not null" json:"branch_id"`
	WorkDate   string        `gorm:"type:varchar(10);not null;uniqueIndex:idx_attendance_day" json:"work_date"` // YYYY-MM-DD
	CheckInAt  time.Time     `gorm:"not null" json:"check_in_at"`
	CheckOutAt *time.Time    `json:"check_out_at,omitempty"`
	Source     CheckInSource `gorm:"type:varchar(10);default:'device'" json:"source"`

	// Relations
	Staff *Staff `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
}
