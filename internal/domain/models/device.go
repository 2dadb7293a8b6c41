package models

import "time"

// DeviceStatus represents the status of a biometric access device
type DeviceStatus string

const (
	DeviceStatusOnline  DeviceStatus = "online"
	DeviceStatusOffline DeviceStatus = "offline"
	DeviceStatusFault   DeviceStatus = "fault"
)

// AccessDevice represents biometric access-control terminals installed at a branch
type AccessDevice struct {
	BaseModel
	BranchID      uint         `gorm:"not null;index" json:"branch_id"`
	Name          string       `gorm:"type:varchar(50);not null" json:"name"`
	SerialNumber  string       `gorm:"type:varchar(50);unique;not null" json:"serial_number"`
	IPAddress     string       `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	RelayDelay    int          `gorm:"default:3" json:"relay_delay"` // 开闸保持秒数
	Status        DeviceStatus `gorm:"type:varchar(20);default:'offline'" json:"status"`
	LastHeartbeat *time.Time   `json:"last_heartbeat,omitempty"`

	// Relations - 关联关系
	Branch       *Branch          `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	AccessEvents []AccessEvent    `gorm:"foreignKey:DeviceID" json:"access_events,omitempty"`
	SyncItems    []DeviceSyncItem `gorm:"foreignKey:DeviceID" json:"sync_items,omitempty"`
}

// SyncOperation represents the kind of roster change pushed to a device
type SyncOperation string

const (
	SyncOperationAdd    SyncOperation = "add"
	SyncOperationUpdate SyncOperation = "update"
	SyncOperationDelete SyncOperation = "delete"
)

// SyncItemStatus represents the lifecycle of a pending sync item
type SyncItemStatus string

const (
	SyncItemStatusPending SyncItemStatus = "pending"
	SyncItemStatusSyncing SyncItemStatus = "syncing"
	SyncItemStatusSynced  SyncItemStatus = "synced"
	SyncItemStatusFailed  SyncItemStatus = "failed"
)

// DeviceSyncItem is the queue of roster changes waiting to be pulled by a device.
// 终端增量同步时取pending项并置为syncing，回执后置synced/failed。
type DeviceSyncItem struct {
	BaseModel
	DeviceID   uint           `gorm:"not null;index" json:"device_id"`
	PersonUUID string         `gorm:"type:varchar(36);not null" json:"person_uuid"`
	Operation  SyncOperation  `gorm:"type:varchar(10);not null" json:"operation"`
	Payload    string         `gorm:"type:text" json:"payload,omitempty"` // 下发给终端的JSON负载
	Status     SyncItemStatus `gorm:"type:varchar(10);default:'pending';index" json:"status"`
	Attempts   int            `gorm:"default:0" json:"attempts"`

	// Relations
	Device *AccessDevice `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
}
