package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"residence-access/httpServices/mailer"
	"residence-access/logger"
	"residence-access/models/otp"
	"residence-access/utils"

	"gorm.io/gorm"
)

// Service handles one-time-code operations for email login and
// verification flows.
type Service struct {
	DB     *gorm.DB
	Mailer *mailer.Mailer
}

// NewOTPService creates a new OTP service
func NewOTPService(db *gorm.DB) *Service {
	return &Service{
		DB:     db,
		Mailer: mailer.New(),
	}
}

// GenerateOTP generates a random 6-digit code
func (s *Service) GenerateOTP() (string, error) {
	max := big.NewInt(999999)
	min := big.NewInt(100000)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	// Ensure the number is at least 6 digits
	n.Add(n, min)
	if n.Cmp(max) > 0 {
		n.Sub(n, max)
		n.Add(n, min)
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendOTP creates and stores a code for the given email, then delivers it.
// An unexpired unused code is returned as-is instead of generating a new
// one; blocked addresses are rejected until the block lapses.
func (s *Service) SendOTP(email string, purpose otp.OTPPurpose) (*otp.OTP, error) {
	existing, err := s.GetOTPStatus(email, purpose)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing OTP: %w", err)
	}

	if existing != nil && existing.IsCurrentlyBlocked() {
		blockTime := "permanently"
		if existing.BlockedUntil != nil {
			blockTime = fmt.Sprintf("until %s", existing.BlockedUntil.Format("15:04:05"))
		}
		return nil, fmt.Errorf("OTP requests are blocked %s due to too many failed attempts", blockTime)
	}

	if existing != nil && existing.IsValid() {
		return nil, fmt.Errorf("a code for this email is still active and hasn't expired yet. Please wait until it expires or use the existing code")
	}

	code, err := s.GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	encrypted, err := utils.EncryptData(code)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt OTP: %w", err)
	}

	// Invalidate any outstanding unused codes for this email and purpose
	err = s.DB.Model(&otp.OTP{}).
		Where("email = ? AND purpose = ? AND is_used = false", email, purpose).
		Update("is_used", true).Error
	if err != nil {
		return nil, fmt.Errorf("failed to invalidate existing OTPs: %w", err)
	}

	newOTP := &otp.OTP{
		Email:         email,
		CodeEncrypted: encrypted,
		Purpose:       purpose,
		IsUsed:        false,
		RetryCount:    0,
		MaxRetries:    3,
		IsBlocked:     false,
		ExpiresAt:     time.Now().Add(5 * time.Minute),
	}

	if err := s.DB.Create(newOTP).Error; err != nil {
		return nil, fmt.Errorf("failed to create OTP record: %w", err)
	}

	// Delivery failure does not invalidate the code; it stays usable once
	// the address becomes reachable again.
	if err := s.Mailer.SendOTP(email, code); err != nil {
		logger.Error(fmt.Sprintf("Failed to deliver OTP email to %s", email), err)
	}

	return newOTP, nil
}

// VerifyOTP checks the provided code for the given email and purpose,
// with retry and block accounting.
func (s *Service) VerifyOTP(email, code string, purpose otp.OTPPurpose) (bool, error) {
	var record otp.OTP

	err := s.DB.Where("email = ? AND purpose = ? AND is_used = false", email, purpose).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil // No code found
		}
		return false, fmt.Errorf("failed to find OTP record: %w", err)
	}

	if record.IsCurrentlyBlocked() {
		blockTime := "permanently"
		if record.BlockedUntil != nil {
			blockTime = fmt.Sprintf("until %s", record.BlockedUntil.Format("15:04:05"))
		}
		return false, fmt.Errorf("OTP verification is blocked %s due to too many failed attempts", blockTime)
	}

	if record.IsExpired() {
		return false, fmt.Errorf("OTP has expired")
	}

	stored, err := utils.DecryptData(record.CodeEncrypted)
	if err != nil {
		return false, fmt.Errorf("failed to decrypt OTP: %w", err)
	}

	if stored != code {
		record.IncrementRetry()
		if err := s.DB.Save(&record).Error; err != nil {
			return false, fmt.Errorf("failed to update retry count: %w", err)
		}

		remaining := record.MaxRetries - record.RetryCount
		if remaining <= 0 {
			return false, fmt.Errorf("invalid code. Maximum attempts exceeded. OTP is now blocked")
		}
		return false, fmt.Errorf("invalid code. %d attempts remaining", remaining)
	}

	record.IsUsed = true
	if err := s.DB.Save(&record).Error; err != nil {
		return false, fmt.Errorf("failed to mark OTP as used: %w", err)
	}

	return true, nil
}

// GetOTPStatus returns the most recent unused, unexpired code for the
// email and purpose, or nil if none exists.
func (s *Service) GetOTPStatus(email string, purpose otp.OTPPurpose) (*otp.OTP, error) {
	var record otp.OTP

	err := s.DB.Where("email = ? AND purpose = ? AND is_used = false AND expires_at > ?",
		email, purpose, time.Now()).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find OTP record: %w", err)
	}

	return &record, nil
}

// CleanupExpiredOTPs removes expired codes from the database
func (s *Service) CleanupExpiredOTPs() error {
	return s.DB.Where("expires_at < ?", time.Now()).Delete(&otp.OTP{}).Error
}
