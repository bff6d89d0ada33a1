package vehicle

import (
	"time"
)

// Vehicle is a registered resident vehicle. The pass issuer checks new
// guest-pass plates against the requester's vehicles so residents cannot
// issue passes for their own cars.
type Vehicle struct {
	ID          string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	PlateNumber string  `gorm:"type:varchar(32);not null;uniqueIndex" json:"plate_number"`
	OwnerID     string  `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	Model       string  `gorm:"type:varchar(128);not null" json:"model"`
	MakeYear    int     `gorm:"not null" json:"make_year"`
	VehicleType string  `gorm:"type:varchar(32);default:car" json:"vehicle_type"`
	Color       *string `gorm:"type:varchar(32)" json:"color,omitempty"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`
	ResidenceID *string `gorm:"type:varchar(36);index" json:"residence_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
