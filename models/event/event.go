package event

import (
	"time"
)

// Audit event types recorded in the event log.
const (
	TypeLogin        = "login"
	TypeLogout       = "logout"
	TypePassCreated  = "guest_pass_created"
	TypePassRevoked  = "guest_pass_revoked"
	TypePassExtended = "guest_pass_extended"
	TypePassVerified = "guest_pass_verified"
	TypeVehicleAdded = "vehicle_added"
)

// EventLog is an audit trail entry. Rows are written asynchronously by
// the audit logger and read by the dashboard's recent-activity feed.
type EventLog struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Type        string    `gorm:"type:varchar(64);not null;index" json:"type"`
	UserID      *string   `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	Details     string    `gorm:"type:text" json:"details"`
	Timestamp   int64     `gorm:"not null;index" json:"timestamp"`
	ResidenceID *string   `gorm:"type:varchar(36);index" json:"residence_id,omitempty"`
	IPAddress   *string   `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent   *string   `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName keeps the audit table name stable for external consumers.
func (EventLog) TableName() string { return "event_log" }
