package dashboard

import (
	"time"

	"residence-access/logger"
	"residence-access/middleware"
	eventModel "residence-access/models/event"
	passModel "residence-access/models/guestpass"
	userModel "residence-access/models/user"
	vehicleModel "residence-access/models/vehicle"
	"residence-access/types"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// DashboardController serves admin summary views over passes, vehicles
// and the audit trail.
type DashboardController struct {
	DB *gorm.DB
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

// summary is the dashboard counters payload.
type summary struct {
	ActiveVisitorPasses  int64 `json:"active_visitor_passes"`
	ActiveDeliveryPasses int64 `json:"active_delivery_passes"`
	PassesIssuedToday    int64 `json:"passes_issued_today"`
	PassesArchivedToday  int64 `json:"passes_archived_today"`
	RegisteredVehicles   int64 `json:"registered_vehicles"`
	Residents            int64 `json:"residents"`
}

// Summary returns community-wide counters, scoped to the admin's
// residence when one is set.
func (dc *DashboardController) Summary(c *fiber.Ctx) error {
	residenceID := middleware.CurrentResidenceID(c)
	nowUnix := time.Now().Unix()
	dayStart := now.BeginningOfDay()

	var s summary

	scoped := func(q *gorm.DB) *gorm.DB {
		if residenceID != nil {
			return q.Where("residence_id = ?", *residenceID)
		}
		return q
	}

	live := func(passType passModel.PassType) *gorm.DB {
		return scoped(dc.DB.Model(&passModel.GuestPass{})).
			Where("status = ? AND type = ?", passModel.StatusActive, passType).
			Where("visit_time + duration_minutes * 60 > ?", nowUnix)
	}

	if err := live(passModel.TypeVisitors).Count(&s.ActiveVisitorPasses).Error; err != nil {
		return dc.summaryError(c, err)
	}
	if err := live(passModel.TypeFoodDelivery).Count(&s.ActiveDeliveryPasses).Error; err != nil {
		return dc.summaryError(c, err)
	}

	if err := scoped(dc.DB.Model(&passModel.GuestPass{})).
		Where("created_at >= ?", dayStart).
		Count(&s.PassesIssuedToday).Error; err != nil {
		return dc.summaryError(c, err)
	}

	if err := scoped(dc.DB.Model(&passModel.GuestPassHistory{})).
		Where("revoked_at >= ?", dayStart.Unix()).
		Count(&s.PassesArchivedToday).Error; err != nil {
		return dc.summaryError(c, err)
	}

	if err := scoped(dc.DB.Model(&vehicleModel.Vehicle{})).
		Where("is_active = ?", true).
		Count(&s.RegisteredVehicles).Error; err != nil {
		return dc.summaryError(c, err)
	}

	if err := scoped(dc.DB.Model(&userModel.User{})).
		Count(&s.Residents).Error; err != nil {
		return dc.summaryError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Dashboard summary loaded",
		Data:    s,
	})
}

// RecentActivity returns the latest audit trail entries, newest first.
func (dc *DashboardController) RecentActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := dc.DB.Model(&eventModel.EventLog{})
	if residenceID := middleware.CurrentResidenceID(c); residenceID != nil {
		q = q.Where("residence_id = ?", *residenceID)
	}

	var entries []eventModel.EventLog
	if err := q.Order("timestamp DESC").Limit(limit).Find(&entries).Error; err != nil {
		logger.Error("Failed to load recent activity", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to load recent activity",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Recent activity loaded",
		Data:    entries,
	})
}

func (dc *DashboardController) summaryError(c *fiber.Ctx, err error) error {
	logger.Error("Failed to build dashboard summary", err)
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Failed to build dashboard summary",
	})
}
