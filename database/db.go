package database

import (
	"fmt"
	"os"

	"residence-access/logger"
	"residence-access/models/admin"
	"residence-access/models/event"
	"residence-access/models/guestpass"
	"residence-access/models/otp"
	"residence-access/models/residence"
	"residence-access/models/user"
	"residence-access/models/vehicle"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	dbUser := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")

	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, dbUser, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createForeignKeyConstraints(); err != nil {
		logger.Error("Failed to create foreign key constraints", err)
		return nil, err
	}
	logger.Success("All foreign key constraints created successfully")

	if err := createIndexes(); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return DB, nil
}

// autoMigrate runs auto migration for all models in dependency order
func autoMigrate() error {
	// Stage 1: Core foundation models
	stage1Models := []interface{}{
		&residence.Residence{},
		&user.User{},
		&admin.Admin{},
	}

	for _, model := range stage1Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: Models with dependencies on Stage 1
	stage2Models := []interface{}{
		&vehicle.Vehicle{},
		&guestpass.GuestPass{},
		&guestpass.GuestPassHistory{},
	}

	for _, model := range stage2Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: Remaining models
	remainingModels := []interface{}{
		&event.EventLog{},
		&otp.OTP{},
	}

	for _, model := range remainingModels {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes() error {
	// Guest pass indexes. The sweeper and the gate check both scan by
	// expiration boundary and plate.
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_guest_pass_user_status ON guest_pass(user_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create guest_pass user_id/status index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_guest_pass_plate ON guest_pass(plate_number)").Error; err != nil {
		return fmt.Errorf("failed to create guest_pass plate_number index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_guest_pass_window_end ON guest_pass((visit_time + duration_minutes * 60))").Error; err != nil {
		return fmt.Errorf("failed to create guest_pass window end index: %w", err)
	}

	// History indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_guest_pass_history_user ON guest_pass_history(user_id)").Error; err != nil {
		return fmt.Errorf("failed to create guest_pass_history user_id index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_guest_pass_history_revoked_at ON guest_pass_history(revoked_at)").Error; err != nil {
		return fmt.Errorf("failed to create guest_pass_history revoked_at index: %w", err)
	}

	// Event log indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_event_log_type_timestamp ON event_log(type, timestamp)").Error; err != nil {
		return fmt.Errorf("failed to create event_log type/timestamp index: %w", err)
	}

	return nil
}

// createForeignKeyConstraints creates foreign key constraints after auto migration.
// Pass and vehicle ownership is deliberately not schema-enforced: owners can
// live in either the users or the admins table, and a cascading delete would
// drop active passes without a history row. Ownership checks stay in the
// service layer.
func createForeignKeyConstraints() error {
	constraints := []struct {
		name string
		sql  string
	}{
		{
			name: "fk_users_residence",
			sql: `ALTER TABLE users ADD CONSTRAINT fk_users_residence
				  FOREIGN KEY (residence_id) REFERENCES residences(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
		{
			name: "fk_admins_residence",
			sql: `ALTER TABLE admins ADD CONSTRAINT fk_admins_residence
				  FOREIGN KEY (residence_id) REFERENCES residences(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
	}

	for _, constraint := range constraints {
		var exists bool
		checkSQL := `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.table_constraints
				WHERE constraint_name = $1
			)
		`

		err := DB.Raw(checkSQL, constraint.name).Scan(&exists).Error
		if err != nil {
			logger.Warning(fmt.Sprintf("Failed to check constraint existence: %s - Error: %v", constraint.name, err))
			continue
		}

		if !exists {
			if err := DB.Exec(constraint.sql).Error; err != nil {
				logger.Warning(fmt.Sprintf("Failed to create constraint: %s - Error: %v", constraint.name, err))
			} else {
				logger.Success(fmt.Sprintf("Successfully created constraint: %s", constraint.name))
			}
		} else {
			logger.Debug(fmt.Sprintf("Constraint already exists: %s", constraint.name))
		}
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
