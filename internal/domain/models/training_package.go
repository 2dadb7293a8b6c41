package models

import "time"

// TrainingPackageStatus represents the status of a personal training package
type TrainingPackageStatus string

const (
	TrainingPackageStatusActive    TrainingPackageStatus = "active"
	TrainingPackageStatusCompleted TrainingPackageStatus = "completed"
	TrainingPackageStatusExpired   TrainingPackageStatus = "expired"
	TrainingPackageStatusCancelled TrainingPackageStatus = "cancelled"
)

// TrainingPackage represents a personal-training session bundle bought by a member.
// 不变式: used_sessions <= total_sessions，消课走条件更新。
type TrainingPackage struct {
	BaseModel
	MemberID      uint                  `gorm:"not null;index" json:"member_id"`
	TrainerID     uint                  `gorm:"not null;index" json:"trainer_id"`
	BranchID      uint                  `gorm:"not null" json:"branch_id"`
	Name          string                `gorm:"type:varchar(50);not null" json:"name"`
	TotalSessions int                   `gorm:"not null" json:"total_sessions"`
	UsedSessions  int                   `gorm:"default:0" json:"used_sessions"`
	PricePaise    int64                 `json:"price_paise"`
	ExpiresOn     *time.Time            `json:"expires_on,omitempty"`
	Status        TrainingPackageStatus `gorm:"type:varchar(20);default:'active'" json:"status"`

	// Relations
	Member   *Member           `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Trainer  *Staff            `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`
	Sessions []TrainingSession `gorm:"foreignKey:PackageID" json:"sessions,omitempty"`
}

// RemainingSessions 剩余课时数
func (p *TrainingPackage) RemainingSessions() int {
	if p.UsedSessions >= p.TotalSessions {
		return 0
	}
	return p.TotalSessions - p.UsedSessions
}

// TrainingSession represents one consumed personal-training session
type TrainingSession struct {
	BaseModel
	PackageID   uint      `gorm:"not null;index" json:"package_id"`
	TrainerID   uint      `gorm:"not null" json:"trainer_id"`
	SessionDate time.Time `gorm:"not null" json:"session_date"`
	RecordedBy  string    `gorm:"type:varchar(50)" json:"recorded_by"`
	Notes       string    `gorm:"type:varchar(200)" json:"notes,omitempty"`

	// Relations
	Package *TrainingPackage `gorm:"foreignKey:PackageID" json:"package,omitempty"`
}
