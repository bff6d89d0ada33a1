package guestpass_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	adminModel "residence-access/models/admin"
	passModel "residence-access/models/guestpass"
	vehicleModel "residence-access/models/vehicle"
	passService "residence-access/services/guestpass"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(&passModel.GuestPass{}, &passModel.GuestPassHistory{}, &vehicleModel.Vehicle{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testService returns a service with a controllable clock.
func testService(t *testing.T, startAt int64) (*passService.Service, *int64) {
	t.Helper()

	clock := startAt
	svc := passService.NewService(testDB(t))
	svc.Now = func() int64 { return clock }
	return svc, &clock
}

func issue(t *testing.T, svc *passService.Service, in passService.IssueInput) *passModel.GuestPass {
	t.Helper()

	pass, err := svc.Issue(context.Background(), in)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return pass
}

func validInput() passService.IssueInput {
	return passService.IssueInput{
		PlateNumber:     "ABC-123",
		Name:            "Visiting Friend",
		Phone:           "555-0100",
		VisitTime:       1000,
		DurationMinutes: 10,
		Type:            passModel.TypeVisitors,
		OwnerID:         "resident-1",
	}
}

func TestIssueValidation(t *testing.T) {
	svc, _ := testService(t, 1000)
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*passService.IssueInput)
		wantErr error
	}{
		{"missing plate", func(in *passService.IssueInput) { in.PlateNumber = "" }, passService.ErrMissingFields},
		{"blank name", func(in *passService.IssueInput) { in.Name = "   " }, passService.ErrMissingFields},
		{"missing phone", func(in *passService.IssueInput) { in.Phone = "" }, passService.ErrMissingFields},
		{"zero visit time", func(in *passService.IssueInput) { in.VisitTime = 0 }, passService.ErrMissingFields},
		{"zero duration", func(in *passService.IssueInput) { in.DurationMinutes = 0 }, passService.ErrInvalidDuration},
		{"negative duration", func(in *passService.IssueInput) { in.DurationMinutes = -5 }, passService.ErrInvalidDuration},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			if _, err := svc.Issue(ctx, in); !errors.Is(err, tc.wantErr) {
				t.Fatalf("Issue() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestIssueRejectsOwnVehiclePlate(t *testing.T) {
	svc, _ := testService(t, 1000)
	ctx := context.Background()

	v := vehicleModel.Vehicle{
		ID:          "veh-1",
		PlateNumber: "MY-CAR-1",
		OwnerID:     "resident-1",
		Model:       "Sedan",
		MakeYear:    2021,
	}
	if err := svc.DB.Create(&v).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}

	in := validInput()
	in.PlateNumber = "MY-CAR-1"
	if _, err := svc.Issue(ctx, in); !errors.Is(err, passService.ErrOwnVehiclePlate) {
		t.Fatalf("Issue() error = %v, want ErrOwnVehiclePlate", err)
	}

	// Another resident may still issue a pass for that plate.
	in.OwnerID = "resident-2"
	if _, err := svc.Issue(ctx, in); err != nil {
		t.Fatalf("Issue() for other resident: %v", err)
	}
}

// Admins and super admins issue passes too, and their accounts live in
// the admins table rather than users. Issuance must not require a users
// row for the owner.
func TestIssueByAdminAccount(t *testing.T) {
	svc, _ := testService(t, 1000)
	ctx := context.Background()

	if err := svc.DB.AutoMigrate(&adminModel.Admin{}); err != nil {
		t.Fatalf("migrate admins: %v", err)
	}
	adm := adminModel.Admin{ID: "admin-1", Username: "frontdesk", PasswordHash: "x"}
	if err := svc.DB.Create(&adm).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	in := validInput()
	in.OwnerID = adm.ID
	in.ApprovedBy = &adm.ID
	pass, err := svc.Issue(ctx, in)
	if err != nil {
		t.Fatalf("Issue() by admin: %v", err)
	}

	live, err := svc.ActivePasses(ctx, adm.ID, passModel.TypeVisitors)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(live) != 1 || live[0].ID != pass.ID {
		t.Fatalf("ActivePasses() for admin owner returned %d passes", len(live))
	}
}

func TestSweepArchivesExpiredPasses(t *testing.T) {
	svc, clock := testService(t, 1000)
	ctx := context.Background()

	pass := issue(t, svc, validInput())

	// Window is [1000, 1600). Still live before the boundary.
	*clock = 1599
	if n, err := svc.Sweep(ctx); err != nil || n != 0 {
		t.Fatalf("Sweep() = %d, %v, want 0, nil", n, err)
	}

	*clock = 1700
	n, err := svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("Sweep() archived %d passes, want 1", n)
	}

	// The active row is gone.
	var count int64
	if err := svc.DB.Model(&passModel.GuestPass{}).Count(&count).Error; err != nil {
		t.Fatalf("count active: %v", err)
	}
	if count != 0 {
		t.Fatalf("active table has %d rows after sweep, want 0", count)
	}

	// The history row carries the original id, status expired, and the
	// sweep time.
	var hist passModel.GuestPassHistory
	if err := svc.DB.First(&hist, "id = ?", pass.ID).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if hist.Status != passModel.StatusExpired {
		t.Fatalf("history status = %q, want %q", hist.Status, passModel.StatusExpired)
	}
	if hist.RevokedAt != 1700 {
		t.Fatalf("history revoked_at = %d, want 1700", hist.RevokedAt)
	}

	// Re-sweeping is a no-op.
	if n, err := svc.Sweep(ctx); err != nil || n != 0 {
		t.Fatalf("second Sweep() = %d, %v, want 0, nil", n, err)
	}
}

func TestSweepLeavesFuturePassesAlone(t *testing.T) {
	svc, clock := testService(t, 1000)
	ctx := context.Background()

	in := validInput()
	in.VisitTime = 5000
	issue(t, svc, in)

	*clock = 2000
	if n, err := svc.Sweep(ctx); err != nil || n != 0 {
		t.Fatalf("Sweep() = %d, %v, want 0, nil", n, err)
	}
}

func TestExtendPushesOutExpiration(t *testing.T) {
	svc, clock := testService(t, 1000)
	ctx := context.Background()

	pass := issue(t, svc, validInput())

	// At 1200 the pass would expire at 1600; extending by 20 minutes
	// moves the boundary to 2800.
	*clock = 1200
	extended, err := svc.Extend(ctx, pass.ID, "resident-1", 20, false)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if extended.DurationMinutes != 30 {
		t.Fatalf("duration = %d minutes, want 30", extended.DurationMinutes)
	}
	if got := extended.ExpiresAt(); got != 2800 {
		t.Fatalf("ExpiresAt() = %d, want 2800", got)
	}

	// A sweep between the old and new boundary leaves it alone.
	*clock = 1700
	if n, err := svc.Sweep(ctx); err != nil || n != 0 {
		t.Fatalf("Sweep() = %d, %v, want 0, nil", n, err)
	}
}

func TestExtendRejectsExpiredPass(t *testing.T) {
	svc, clock := testService(t, 1000)
	ctx := context.Background()

	pass := issue(t, svc, validInput())

	// Past the boundary but before the sweeper has run.
	*clock = 1601
	_, err := svc.Extend(ctx, pass.ID, "resident-1", 20, false)
	if !errors.Is(err, passService.ErrPassNotActive) {
		t.Fatalf("Extend() error = %v, want ErrPassNotActive", err)
	}
}

func TestExtendValidation(t *testing.T) {
	svc, _ := testService(t, 1000)
	ctx := context.Background()

	pass := issue(t, svc, validInput())

	if _, err := svc.Extend(ctx, pass.ID, "resident-1", 0, false); !errors.Is(err, passService.ErrInvalidDuration) {
		t.Fatalf("Extend(0) error = %v, want ErrInvalidDuration", err)
	}
	if _, err := svc.Extend(ctx, pass.ID, "someone-else", 10, false); !errors.Is(err, passService.ErrPassNotFound) {
		t.Fatalf("Extend() by non-owner error = %v, want ErrPassNotFound", err)
	}
	if _, err := svc.Extend(ctx, "no-such-id", "resident-1", 10, false); !errors.Is(err, passService.ErrPassNotFound) {
		t.Fatalf("Extend() unknown id error = %v, want ErrPassNotFound", err)
	}
}

func TestRevokeArchivesImmediately(t *testing.T) {
	svc, _ := testService(t, 1000)
	ctx := context.Background()

	pass := issue(t, svc, validInput())

	if err := svc.Revoke(ctx, pass.ID, "resident-1", false); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	var hist passModel.GuestPassHistory
	if err := svc.DB.First(&hist, "id = ?", pass.ID).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if hist.Status != passModel.StatusRevoked {
		t.Fatalf("history status = %q, want %q", hist.Status, passModel.StatusRevoked)
	}
	if hist.RevokedAt != 1000 {
		t.Fatalf("history revoked_at = %d, want 1000", hist.RevokedAt)
	}

	// The active row is gone; a second revoke reports not found.
	if err := svc.Revoke(ctx, pass.ID, "resident-1", false); !errors.Is(err, passService.ErrPassNotFound) {
		t.Fatalf("second Revoke() error = %v, want ErrPassNotFound", err)
	}
}

func TestRevokedPassKeepsRevokedStatusAfterSweep(t *testing.T) {
	svc, clock := testService(t, 1000)
	ctx := context.Background()

	pass := issue(t, svc, validInput())

	if err := svc.Revoke(ctx, pass.ID, "resident-1", false); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	// The sweep after the window elapses must not overwrite the archived
	// row; the pass stays revoked, not expired.
	*clock = 1700
	if n, err := svc.Sweep(ctx); err != nil || n != 0 {
		t.Fatalf("Sweep() = %d, %v, want 0, nil", n, err)
	}

	var hist passModel.GuestPassHistory
	if err := svc.DB.First(&hist, "id = ?", pass.ID).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if hist.Status != passModel.StatusRevoked {
		t.Fatalf("history status = %q, want %q", hist.Status, passModel.StatusRevoked)
	}
	if hist.RevokedAt != 1000 {
		t.Fatalf("history revoked_at = %d, want 1000", hist.RevokedAt)
	}
}

func TestRevokeOwnership(t *testing.T) {
	svc, _ := testService(t, 1000)
	ctx := context.Background()

	pass := issue(t, svc, validInput())

	if err := svc.Revoke(ctx, pass.ID, "someone-else", false); !errors.Is(err, passService.ErrPassNotFound) {
		t.Fatalf("Revoke() by non-owner error = %v, want ErrPassNotFound", err)
	}

	// A privileged requester (guard or admin) may revoke any pass.
	if err := svc.Revoke(ctx, pass.ID, "guard-1", true); err != nil {
		t.Fatalf("privileged revoke: %v", err)
	}
}

func TestActivePassesFiltersElapsedWindows(t *testing.T) {
	svc, clock := testService(t, 1000)
	ctx := context.Background()

	issue(t, svc, validInput()) // window [1000, 1600)

	later := validInput()
	later.VisitTime = 2000
	later.PlateNumber = "XYZ-789"
	issue(t, svc, later) // window [2000, 2600)

	// Between the two windows, before any sweep: only the later pass is
	// listed even though both rows still sit in the active table.
	*clock = 1800
	live, err := svc.ActivePasses(ctx, "resident-1", passModel.TypeVisitors)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("ActivePasses() returned %d passes, want 1", len(live))
	}
	if live[0].PlateNumber != "XYZ-789" {
		t.Fatalf("ActivePasses() returned plate %q, want XYZ-789", live[0].PlateNumber)
	}
}

func TestVerifyPlate(t *testing.T) {
	svc, clock := testService(t, 1000)
	ctx := context.Background()

	pass := issue(t, svc, validInput())

	*clock = 1200
	got, valid, err := svc.VerifyPlate(ctx, "ABC-123", nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !valid {
		t.Fatal("VerifyPlate() = invalid inside the window")
	}
	if got.ID != pass.ID {
		t.Fatalf("VerifyPlate() returned pass %q, want %q", got.ID, pass.ID)
	}

	// Past the boundary the pass no longer authorizes entry.
	*clock = 1600
	_, valid, err = svc.VerifyPlate(ctx, "ABC-123", nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if valid {
		t.Fatal("VerifyPlate() = valid at the window boundary")
	}

	if _, _, err := svc.VerifyPlate(ctx, "UNKNOWN", nil); !errors.Is(err, passService.ErrPassNotFound) {
		t.Fatalf("VerifyPlate() unknown plate error = %v, want ErrPassNotFound", err)
	}
}

func TestVerifyPlateChecksAllPassesForPlate(t *testing.T) {
	svc, clock := testService(t, 1000)
	ctx := context.Background()

	current := issue(t, svc, validInput()) // window [1000, 1600)

	future := validInput()
	future.VisitTime = 5000
	issue(t, svc, future) // window [5000, 5600)

	// The future-dated pass must not shadow the one that authorizes
	// entry right now.
	*clock = 1200
	got, valid, err := svc.VerifyPlate(ctx, "ABC-123", nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !valid {
		t.Fatal("VerifyPlate() = invalid while one pass window contains now")
	}
	if got.ID != current.ID {
		t.Fatalf("VerifyPlate() returned pass %q, want %q", got.ID, current.ID)
	}

	// Between the two windows neither pass authorizes entry.
	*clock = 3000
	_, valid, err = svc.VerifyPlate(ctx, "ABC-123", nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if valid {
		t.Fatal("VerifyPlate() = valid between windows")
	}
}

func TestHistoryOrdering(t *testing.T) {
	svc, clock := testService(t, 1000)
	ctx := context.Background()

	first := issue(t, svc, validInput())

	second := validInput()
	second.PlateNumber = "XYZ-789"
	second.VisitTime = 2000
	secondPass := issue(t, svc, second)

	if err := svc.Revoke(ctx, first.ID, "resident-1", false); err != nil {
		t.Fatalf("revoke first: %v", err)
	}
	*clock = 3000
	if err := svc.Revoke(ctx, secondPass.ID, "resident-1", false); err != nil {
		t.Fatalf("revoke second: %v", err)
	}

	rows, err := svc.History(ctx, "resident-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("History() returned %d rows, want 2", len(rows))
	}
	if rows[0].ID != secondPass.ID {
		t.Fatalf("History() newest first: got %q, want %q", rows[0].ID, secondPass.ID)
	}
}
