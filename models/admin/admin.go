package admin

import (
	"time"
)

// Admin is an administrator account. Super admins are not bound to a
// residence; regular admins manage exactly one.
type Admin struct {
	ID           string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string  `gorm:"type:varchar(255);not null;unique" json:"username"`
	PasswordHash string  `gorm:"type:varchar(255);not null" json:"-"`
	Name         *string `gorm:"type:varchar(255)" json:"name,omitempty"`
	Email        *string `gorm:"type:varchar(255);index" json:"email,omitempty"`
	Phone        *string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	IsSuperAdmin bool    `gorm:"default:false" json:"is_super_admin"`
	ResidenceID  *string `gorm:"type:varchar(36);index" json:"residence_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
