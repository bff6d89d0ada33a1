package user

import (
	"time"
)

// Role of a community member account.
type Role string

const (
	RoleGuard    Role = "guard"
	RoleResident Role = "resident"
)

// User is a resident or guard account scoped to one residence.
type User struct {
	ID           string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string  `gorm:"type:varchar(255);not null;unique" json:"username"`
	PasswordHash string  `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role    `gorm:"type:varchar(20);not null" json:"role"`
	Name         *string `gorm:"type:varchar(255)" json:"name,omitempty"`
	Email        *string `gorm:"type:varchar(255);index" json:"email,omitempty"`
	Phone        *string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	CarNumber    *string `gorm:"type:varchar(32)" json:"car_number,omitempty"`
	HouseAddress *string `gorm:"type:varchar(255)" json:"house_address,omitempty"`
	UnitNumber   *string `gorm:"type:varchar(32)" json:"unit_number,omitempty"`
	ResidenceID  *string `gorm:"type:varchar(36);index" json:"residence_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
