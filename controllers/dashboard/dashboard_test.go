package dashboard_test

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"residence-access/controllers/dashboard"
	eventModel "residence-access/models/event"
	passModel "residence-access/models/guestpass"
	userModel "residence-access/models/user"
	vehicleModel "residence-access/models/vehicle"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
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

	err = db.AutoMigrate(
		&passModel.GuestPass{}, &passModel.GuestPassHistory{},
		&vehicleModel.Vehicle{}, &userModel.User{}, &eventModel.EventLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// summaryApp mounts the Summary handler behind stub claims, the same
// shape the auth middleware stores.
func summaryApp(db *gorm.DB, residenceID string) *fiber.App {
	app := fiber.New()
	dc := dashboard.NewDashboardController(db)

	app.Get("/summary", func(c *fiber.Ctx) error {
		claims := jwt.MapClaims{"sub": "admin-1", "role": "admin"}
		if residenceID != "" {
			claims["residence_id"] = residenceID
		}
		c.Locals("user", claims)
		return c.Next()
	}, dc.Summary)

	return app
}

func archivedToday(t *testing.T, app *fiber.App) int64 {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", "/summary", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Data struct {
			PassesArchivedToday int64 `json:"passes_archived_today"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body.Data.PassesArchivedToday
}

func TestSummaryScopesArchivedCountToResidence(t *testing.T) {
	db := testDB(t)

	resA, resB := "res-a", "res-b"
	now := time.Now().Unix()
	rows := []passModel.GuestPassHistory{
		{ID: "h1", PlateNumber: "AAA-111", VisitTime: now - 600, DurationMinutes: 5,
			Status: passModel.StatusExpired, Type: passModel.TypeVisitors,
			UserID: "u1", RevokedAt: now, ResidenceID: &resA},
		{ID: "h2", PlateNumber: "BBB-222", VisitTime: now - 600, DurationMinutes: 5,
			Status: passModel.StatusRevoked, Type: passModel.TypeVisitors,
			UserID: "u1", RevokedAt: now, ResidenceID: &resA},
		{ID: "h3", PlateNumber: "CCC-333", VisitTime: now - 600, DurationMinutes: 5,
			Status: passModel.StatusExpired, Type: passModel.TypeVisitors,
			UserID: "u2", RevokedAt: now, ResidenceID: &resB},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("create history rows: %v", err)
	}

	// A residence admin sees only their own archive.
	if got := archivedToday(t, summaryApp(db, resA)); got != 2 {
		t.Fatalf("archived today for residence admin = %d, want 2", got)
	}

	// A super admin carries no residence claim and sees all tenants.
	if got := archivedToday(t, summaryApp(db, "")); got != 3 {
		t.Fatalf("archived today for super admin = %d, want 3", got)
	}
}
