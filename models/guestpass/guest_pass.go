package guestpass

import (
	"time"
)

// PassStatus is the lifecycle state of a guest pass.
type PassStatus string

const (
	StatusActive  PassStatus = "active"
	StatusExpired PassStatus = "expired"
	StatusRevoked PassStatus = "revoked"
)

// PassType distinguishes visitor passes from food-delivery passes.
// Both share the same lifecycle; they are counted and listed separately.
type PassType string

const (
	TypeVisitors     PassType = "visitors"
	TypeFoodDelivery PassType = "food_delivery"
)

// GuestPass is a row in the active pass table. A pass lives here with
// status "active" until the sweeper or a manual revoke archives it into
// guest_pass_history and deletes it. VisitTime is epoch seconds; the
// authorized window is [VisitTime, VisitTime+DurationMinutes*60).
type GuestPass struct {
	ID              string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	PlateNumber     string     `gorm:"type:varchar(32);not null;index" json:"plate_number"`
	Name            string     `gorm:"type:varchar(255);not null" json:"name"`
	Phone           string     `gorm:"type:varchar(20);not null" json:"phone"`
	VisitTime       int64      `gorm:"not null" json:"visit_time"`
	DurationMinutes int64      `gorm:"not null" json:"duration_minutes"`
	Status          PassStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Type            PassType   `gorm:"type:varchar(20);not null;default:visitors" json:"type"`
	UserID          string     `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ResidenceID     *string    `gorm:"type:varchar(36);index" json:"residence_id,omitempty"`
	ApprovedBy      *string    `gorm:"type:varchar(36)" json:"approved_by,omitempty"`
	EntryGate       *string    `gorm:"type:varchar(64)" json:"entry_gate,omitempty"`
	Notes           *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName pins the table name; dashboards and reports query it directly.
func (GuestPass) TableName() string { return "guest_pass" }

// ExpiresAt returns the end of the authorized window in epoch seconds.
func (g *GuestPass) ExpiresAt() int64 {
	return WindowEnd(g.VisitTime, g.DurationMinutes)
}

// Expired reports whether the pass window has elapsed at the given instant.
func (g *GuestPass) Expired(now int64) bool {
	return WindowExpired(g.VisitTime, g.DurationMinutes, now)
}

// WithinWindow reports whether the pass authorizes entry at the given instant.
func (g *GuestPass) WithinWindow(now int64) bool {
	return WindowContains(g.VisitTime, g.DurationMinutes, now)
}
