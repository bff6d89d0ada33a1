package seeders

import (
	"fmt"
	"os"

	"residence-access/logger"
	adminModel "residence-access/models/admin"
	residenceModel "residence-access/models/residence"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedResidences creates the default residence when none exists.
func SeedResidences(db *gorm.DB) error {
	var count int64
	if err := db.Model(&residenceModel.Residence{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count residences: %w", err)
	}
	if count > 0 {
		logger.Debug("Residences already seeded, skipping")
		return nil
	}

	name := os.Getenv("DEFAULT_RESIDENCE_NAME")
	if name == "" {
		name = "Default Residence"
	}

	r := residenceModel.Residence{
		ID:       uuid.NewString(),
		Name:     name,
		Address:  "Unconfigured",
		Timezone: "UTC",
		Status:   residenceModel.StatusActive,
	}
	if err := db.Create(&r).Error; err != nil {
		return fmt.Errorf("failed to create default residence: %w", err)
	}

	logger.Success(fmt.Sprintf("Seeded default residence %s (%s)", r.Name, r.ID))
	return nil
}

// SeedSuperAdmin creates the initial super admin account when none
// exists. Credentials come from SUPER_ADMIN_USERNAME and
// SUPER_ADMIN_PASSWORD; the seeder refuses to invent a password.
func SeedSuperAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&adminModel.Admin{}).
		Where("is_super_admin = ?", true).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count super admins: %w", err)
	}
	if count > 0 {
		logger.Debug("Super admin already seeded, skipping")
		return nil
	}

	username := os.Getenv("SUPER_ADMIN_USERNAME")
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if username == "" || password == "" {
		logger.Warning("SUPER_ADMIN_USERNAME or SUPER_ADMIN_PASSWORD not set, skipping super admin seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash super admin password: %w", err)
	}

	a := adminModel.Admin{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		IsSuperAdmin: true,
	}
	if err := db.Create(&a).Error; err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	logger.Success(fmt.Sprintf("Seeded super admin %s", username))
	return nil
}
