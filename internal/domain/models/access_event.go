package models

import "time"

// AccessAction represents the decision returned to a terminal
type AccessAction string

const (
	AccessActionOpen   AccessAction = "OPEN"
	AccessActionDenied AccessAction = "DENIED"
)

// AccessPersonType represents who was recognized at the terminal
type AccessPersonType string

const (
	AccessPersonMember  AccessPersonType = "member"
	AccessPersonStaff   AccessPersonType = "staff"
	AccessPersonUnknown AccessPersonType = "unknown"
)

// 拒绝/放行原因
const (
	AccessReasonValid            = "valid"
	AccessReasonAlreadyCheckedIn = "already_checked_in"
	AccessReasonWrongBranch      = "wrong_branch"
	AccessReasonExpired          = "expired"
	AccessReasonFrozen           = "frozen"
	AccessReasonNoMembership     = "no_membership"
	AccessReasonInactive         = "inactive"
	AccessReasonNotFound         = "not_found"
	AccessReasonUnknown          = "unknown"
)

// AccessEvent is the append-only audit record of each recognition attempt.
// 每次识别请求无论放行与否都要落一条。
type AccessEvent struct {
	BaseModel
	DeviceID       uint             `gorm:"not null;index" json:"device_id"`
	PersonUUID     string           `gorm:"type:varchar(36);index" json:"person_uuid"`
	PersonType     AccessPersonType `gorm:"type:varchar(10)" json:"person_type"`
	PersonID       uint             `json:"person_id,omitempty"`
	Confidence     float64          `json:"confidence"`
	Action         AccessAction     `gorm:"type:varchar(10);not null" json:"action"`
	Reason         string           `gorm:"type:varchar(30)" json:"reason"`
	DisplayMessage string           `gorm:"type:varchar(200)" json:"display_message"`
	OccurredAt     time.Time        `gorm:"not null;index" json:"occurred_at"`

	// Relations
	Device *AccessDevice `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
}
