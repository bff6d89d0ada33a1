package guestpass

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"residence-access/models/guestpass"
	"residence-access/models/vehicle"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Errors reported to callers. Handlers map these to HTTP statuses.
var (
	ErrMissingFields   = errors.New("all fields are required")
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
	ErrOwnVehiclePlate = errors.New("plate number belongs to one of your registered vehicles")
	ErrPassNotFound    = errors.New("guest pass not found or not owned by you")
	ErrPassNotActive   = errors.New("guest pass is no longer active")
)

// Service owns the guest-pass lifecycle: issuance, manual revoke, extend
// and the sweep that archives expired passes. All archival paths move the
// row into guest_pass_history and delete it from guest_pass in a single
// transaction; the active row's status is never flipped to "expired" in
// place.
type Service struct {
	DB *gorm.DB

	// Now supplies the current epoch seconds. Tests override it.
	Now func() int64
}

// NewService creates a new guest pass service
func NewService(db *gorm.DB) *Service {
	return &Service{
		DB:  db,
		Now: func() int64 { return time.Now().Unix() },
	}
}

// IssueInput carries the fields of a new guest pass. VisitTime is epoch
// seconds; callers convert any local time representation before calling.
type IssueInput struct {
	PlateNumber     string
	Name            string
	Phone           string
	VisitTime       int64
	DurationMinutes int64
	Type            guestpass.PassType
	OwnerID         string
	ResidenceID     *string
	ApprovedBy      *string
	EntryGate       *string
	Notes           *string
}

// Issue validates the input and inserts a new active pass. It rejects a
// plate that matches a vehicle registered to the requester, so residents
// cannot issue passes against their own cars.
func (s *Service) Issue(ctx context.Context, in IssueInput) (*guestpass.GuestPass, error) {
	in.PlateNumber = strings.TrimSpace(in.PlateNumber)
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)

	if in.PlateNumber == "" || in.Name == "" || in.Phone == "" || in.VisitTime <= 0 || in.OwnerID == "" {
		return nil, ErrMissingFields
	}
	if in.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	if in.Type == "" {
		in.Type = guestpass.TypeVisitors
	}

	var owned int64
	err := s.DB.WithContext(ctx).Model(&vehicle.Vehicle{}).
		Where("plate_number = ? AND owner_id = ?", in.PlateNumber, in.OwnerID).
		Count(&owned).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check registered vehicles: %w", err)
	}
	if owned > 0 {
		return nil, ErrOwnVehiclePlate
	}

	pass := guestpass.GuestPass{
		ID:              uuid.NewString(),
		PlateNumber:     in.PlateNumber,
		Name:            in.Name,
		Phone:           in.Phone,
		VisitTime:       in.VisitTime,
		DurationMinutes: in.DurationMinutes,
		Status:          guestpass.StatusActive,
		Type:            in.Type,
		UserID:          in.OwnerID,
		ResidenceID:     in.ResidenceID,
		ApprovedBy:      in.ApprovedBy,
		EntryGate:       in.EntryGate,
		Notes:           in.Notes,
	}

	if err := s.DB.WithContext(ctx).Create(&pass).Error; err != nil {
		return nil, fmt.Errorf("failed to create guest pass: %w", err)
	}

	return &pass, nil
}

// ActivePasses returns the owner's active passes of the given type whose
// window has not yet elapsed. Future-dated passes are included.
func (s *Service) ActivePasses(ctx context.Context, ownerID string, passType guestpass.PassType) ([]guestpass.GuestPass, error) {
	var rows []guestpass.GuestPass
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND type = ? AND status = ?", ownerID, passType, guestpass.StatusActive).
		Order("visit_time DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list guest passes: %w", err)
	}

	// Drop passes already past their boundary that the sweeper has not
	// archived yet.
	now := s.Now()
	live := rows[:0]
	for _, p := range rows {
		if !p.Expired(now) {
			live = append(live, p)
		}
	}
	return live, nil
}

// History returns the owner's archived passes, newest archival first.
func (s *Service) History(ctx context.Context, ownerID string) ([]guestpass.GuestPassHistory, error) {
	var rows []guestpass.GuestPassHistory
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("revoked_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list guest pass history: %w", err)
	}
	return rows, nil
}

// Get loads a single pass, enforcing ownership unless the requester is
// privileged (guard or admin).
func (s *Service) Get(ctx context.Context, id, requesterID string, privileged bool) (*guestpass.GuestPass, error) {
	var pass guestpass.GuestPass
	q := s.DB.WithContext(ctx).Where("id = ?", id)
	if !privileged {
		q = q.Where("user_id = ?", requesterID)
	}
	if err := q.First(&pass).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPassNotFound
		}
		return nil, fmt.Errorf("failed to load guest pass: %w", err)
	}
	return &pass, nil
}

// VerifyPlate looks up the active passes for a plate within the residence
// scope and reports whether any of them authorizes entry right now, using
// the same window predicate as the sweeper. A plate can carry several
// passes (for example a live one and a future-dated one); entry is valid
// if any window contains the current instant.
func (s *Service) VerifyPlate(ctx context.Context, plate string, residenceID *string) (*guestpass.GuestPass, bool, error) {
	var rows []guestpass.GuestPass
	q := s.DB.WithContext(ctx).
		Where("plate_number = ? AND status = ?", strings.TrimSpace(plate), guestpass.StatusActive)
	if residenceID != nil {
		q = q.Where("residence_id = ?", *residenceID)
	}
	if err := q.Order("visit_time ASC").Find(&rows).Error; err != nil {
		return nil, false, fmt.Errorf("failed to look up guest pass: %w", err)
	}
	if len(rows) == 0 {
		return nil, false, ErrPassNotFound
	}

	now := s.Now()
	for i := range rows {
		if rows[i].WithinWindow(now) {
			return &rows[i], true, nil
		}
	}

	// Nothing authorizes entry; report the next upcoming pass, or the
	// most recent one if every window has elapsed.
	for i := range rows {
		if !rows[i].Expired(now) {
			return &rows[i], false, nil
		}
	}
	return &rows[len(rows)-1], false, nil
}

// Revoke archives an active pass with status "revoked" and removes it
// from the active table, in one transaction. Losing a race against the
// sweeper surfaces as ErrPassNotFound; the duplicate history insert is a
// no-op either way.
func (s *Service) Revoke(ctx context.Context, id, requesterID string, privileged bool) error {
	now := s.Now()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pass guestpass.GuestPass
		q := tx.Where("id = ? AND status = ?", id, guestpass.StatusActive)
		if !privileged {
			q = q.Where("user_id = ?", requesterID)
		}
		if err := q.First(&pass).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPassNotFound
			}
			return fmt.Errorf("failed to load guest pass: %w", err)
		}

		hist := guestpass.ArchiveOf(&pass, guestpass.StatusRevoked, now)
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&hist).Error
		if err != nil {
			return fmt.Errorf("failed to archive guest pass: %w", err)
		}

		if err := tx.Where("id = ?", pass.ID).Delete(&guestpass.GuestPass{}).Error; err != nil {
			return fmt.Errorf("failed to remove guest pass: %w", err)
		}
		return nil
	})
}

// Extend adds minutes to a pass's duration, pushing out the expiration
// boundary the sweeper checks. The update is conditional on the pass still
// being active and inside its window: extending a pass that has already
// crossed its boundary is rejected rather than racing the sweeper's
// archive step.
func (s *Service) Extend(ctx context.Context, id, requesterID string, additionalMinutes int64, privileged bool) (*guestpass.GuestPass, error) {
	if additionalMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	// Ownership check first so a wrong owner gets a clean not-found
	// instead of a misleading "no longer active".
	if _, err := s.Get(ctx, id, requesterID, privileged); err != nil {
		return nil, err
	}

	now := s.Now()
	res := s.DB.WithContext(ctx).Model(&guestpass.GuestPass{}).
		Where("id = ? AND status = ? AND visit_time + duration_minutes * 60 > ?",
			id, guestpass.StatusActive, now).
		UpdateColumn("duration_minutes", gorm.Expr("duration_minutes + ?", additionalMinutes))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to extend guest pass: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrPassNotActive
	}

	return s.Get(ctx, id, requesterID, privileged)
}

// Sweep performs one expiration pass over the active table: select every
// row whose window has elapsed, copy it into history with status
// "expired", and delete it, all in one transaction. Re-running a sweep is
// safe; an already-archived id is skipped by the conflict clause. Returns
// the number of passes archived.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	now := s.Now()
	var archived int64

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due []guestpass.GuestPass
		err := tx.
			Where("visit_time + duration_minutes * 60 <= ? AND status <> ?", now, guestpass.StatusRevoked).
			Find(&due).Error
		if err != nil {
			return fmt.Errorf("failed to select expired passes: %w", err)
		}
		if len(due) == 0 {
			return nil
		}

		hist := make([]guestpass.GuestPassHistory, 0, len(due))
		ids := make([]string, 0, len(due))
		for i := range due {
			hist = append(hist, guestpass.ArchiveOf(&due[i], guestpass.StatusExpired, now))
			ids = append(ids, due[i].ID)
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&hist).Error
		if err != nil {
			return fmt.Errorf("failed to archive expired passes: %w", err)
		}

		res := tx.Where("id IN ?", ids).Delete(&guestpass.GuestPass{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove expired passes: %w", res.Error)
		}
		archived = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return archived, nil
}
