package models

import "time"

// BenefitSlot represents a bookable time window for a benefit (sauna, ice bath...).
// 不变式: booked_count <= capacity，由预约时的条件更新保证。
type BenefitSlot struct {
	BaseModel
	BranchID    uint      `gorm:"not null;index" json:"branch_id"`
	BenefitType string    `gorm:"type:varchar(50);not null;index" json:"benefit_type"`
	SlotDate    time.Time `gorm:"not null;index" json:"slot_date"`
	StartTime   string    `gorm:"type:varchar(5);not null" json:"start_time"` // HH:MM
	EndTime     string    `gorm:"type:varchar(5);not null" json:"end_time"`   // HH:MM
	Capacity    int       `gorm:"not null" json:"capacity"`
	BookedCount int       `gorm:"default:0" json:"booked_count"`

	// Relations
	Branch   *Branch          `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Bookings []BenefitBooking `gorm:"foreignKey:SlotID" json:"bookings,omitempty"`
}

// AvailableCount 剩余可约名额
func (s *BenefitSlot) AvailableCount() int {
	if s.BookedCount >= s.Capacity {
		return 0
	}
	return s.Capacity - s.BookedCount
}

// BookingStatus represents the status of a benefit booking
type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// BenefitBooking represents a member's reservation of a benefit slot
type BenefitBooking struct {
	BaseModel
	MemberID     uint          `gorm:"not null;index" json:"member_id"`
	MembershipID uint          `gorm:"not null;index" json:"membership_id"`
	SlotID       uint          `gorm:"not null;index" json:"slot_id"`
	Status       BookingStatus `gorm:"type:varchar(20);default:'booked'" json:"status"`
	BookedAt     time.Time     `gorm:"not null" json:"booked_at"`
	CancelledAt  *time.Time    `json:"cancelled_at,omitempty"`
	CancelReason string        `gorm:"type:varchar(200)" json:"cancel_reason,omitempty"`
	Notes        string        `gorm:"type:varchar(200)" json:"notes,omitempty"`

	// Relations
	Member *Member      `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Slot   *BenefitSlot `gorm:"foreignKey:SlotID" json:"slot,omitempty"`
}
