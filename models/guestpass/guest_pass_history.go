package guestpass

import (
	"time"
)

// GuestPassHistory is the append-only archive of passes that left the
// active table, tagged with how they left. The id is the original pass id
// and is the primary key, so a duplicate archival attempt is a constraint
// violation; writers insert with ON CONFLICT DO NOTHING. Rows are never
// updated after insertion.
type GuestPassHistory struct {
	ID              string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	PlateNumber     string     `gorm:"type:varchar(32);not null;index" json:"plate_number"`
	Name            string     `gorm:"type:varchar(255)" json:"name"`
	Phone           string     `gorm:"type:varchar(20)" json:"phone"`
	VisitTime       int64      `gorm:"not null" json:"visit_time"`
	DurationMinutes int64      `gorm:"not null" json:"duration_minutes"`
	Status          PassStatus `gorm:"type:varchar(20);not null" json:"status"`
	Type            PassType   `gorm:"type:varchar(20);not null" json:"type"`
	UserID          string     `gorm:"type:varchar(36);not null;index" json:"user_id"`
	RevokedAt       int64      `gorm:"not null;index" json:"revoked_at"`
	ResidenceID     *string    `gorm:"type:varchar(36);index" json:"residence_id,omitempty"`
	ApprovedBy      *string    `gorm:"type:varchar(36)" json:"approved_by,omitempty"`
	EntryGate       *string    `gorm:"type:varchar(64)" json:"entry_gate,omitempty"`
	ExitGate        *string    `gorm:"type:varchar(64)" json:"exit_gate,omitempty"`
	Notes           *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName pins the table name; dashboards and reports query it directly.
func (GuestPassHistory) TableName() string { return "guest_pass_history" }

// ArchiveOf builds the history row for a pass leaving the active table
// with the given terminal status at the given instant.
func ArchiveOf(g *GuestPass, status PassStatus, revokedAt int64) GuestPassHistory {
	return GuestPassHistory{
		ID:              g.ID,
		PlateNumber:     g.PlateNumber,
		Name:            g.Name,
		Phone:           g.Phone,
		VisitTime:       g.VisitTime,
		DurationMinutes: g.DurationMinutes,
		Status:          status,
		Type:            g.Type,
		UserID:          g.UserID,
		RevokedAt:       revokedAt,
		ResidenceID:     g.ResidenceID,
		ApprovedBy:      g.ApprovedBy,
		EntryGate:       g.EntryGate,
		Notes:           g.Notes,
	}
}
