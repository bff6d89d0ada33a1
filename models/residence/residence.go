package residence

import (
	"time"
)

// ResidenceStatus is the tenancy state of a residence.
type ResidenceStatus string

const (
	StatusActive    ResidenceStatus = "active"
	StatusInactive  ResidenceStatus = "inactive"
	StatusSuspended ResidenceStatus = "suspended"
)

// Residence is a tenant scope. Most records and operations are filtered
// by residence id.
type Residence struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Address   string          `gorm:"type:text;not null" json:"address"`
	Phone     *string         `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Email     *string         `gorm:"type:varchar(255)" json:"email,omitempty"`
	Timezone  string          `gorm:"type:varchar(64);default:UTC" json:"timezone"`
	Status    ResidenceStatus `gorm:"type:varchar(20);default:active" json:"status"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
