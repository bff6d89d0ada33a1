package vehicle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"residence-access/logger"
	"residence-access/middleware"
	eventModel "residence-access/models/event"
	vehicleModel "residence-access/models/vehicle"
	"residence-access/types"
	vehicleTypes "residence-access/types/vehicle"
	"residence-access/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VehicleController handles resident vehicle registration.
type VehicleController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewVehicleController creates a new vehicle controller
func NewVehicleController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *VehicleController {
	return &VehicleController{DB: db, Logger: asyncLogger}
}

// Store registers a vehicle under the requester.
func (vc *VehicleController) Store(c *fiber.Ctx) error {
	var req vehicleTypes.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	req.PlateNumber = strings.TrimSpace(strings.ToUpper(req.PlateNumber))
	if req.PlateNumber == "" || req.Model == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Plate number and model are required",
		})
	}

	userID := middleware.CurrentUserID(c)

	var count int64
	if err := vc.DB.Model(&vehicleModel.Vehicle{}).
		Where("plate_number = ?", req.PlateNumber).
		Count(&count).Error; err != nil {
		logger.Error("Failed to check plate number", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to register vehicle",
		})
	}
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "A vehicle with this plate number is already registered",
		})
	}

	v := vehicleModel.Vehicle{
		ID:          uuid.NewString(),
		PlateNumber: req.PlateNumber,
		OwnerID:     userID,
		Model:       req.Model,
		MakeYear:    req.MakeYear,
		VehicleType: req.VehicleType,
		Color:       utils.OptionalString(req.Color),
		IsActive:    true,
		ResidenceID: middleware.CurrentResidenceID(c),
	}
	if v.VehicleType == "" {
		v.VehicleType = "car"
	}

	if err := vc.DB.Create(&v).Error; err != nil {
		logger.Error("Failed to register vehicle", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to register vehicle",
		})
	}

	vc.audit(c, eventModel.TypeVehicleAdded, fmt.Sprintf("vehicle %s registered with plate %s", v.ID, v.PlateNumber))
	logger.Success(fmt.Sprintf("Vehicle registered: %s", v.PlateNumber))

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Vehicle registered successfully",
		Data:    v,
	})
}

// Index lists the requester's vehicles.
func (vc *VehicleController) Index(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var vehicles []vehicleModel.Vehicle
	if err := vc.DB.Where("owner_id = ?", userID).
		Order("created_at DESC").
		Find(&vehicles).Error; err != nil {
		logger.Error("Failed to list vehicles", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to list vehicles",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Vehicles loaded",
		Data:    vehicles,
	})
}

// Update changes the mutable fields of one of the requester's vehicles.
func (vc *VehicleController) Update(c *fiber.Ctx) error {
	var req vehicleTypes.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	v, err := vc.ownedVehicle(c)
	if err != nil {
		return vc.vehicleLookupError(c, err)
	}

	if req.Model != "" {
		v.Model = req.Model
	}
	if req.MakeYear != 0 {
		v.MakeYear = req.MakeYear
	}
	if req.VehicleType != "" {
		v.VehicleType = req.VehicleType
	}
	if req.Color != "" {
		v.Color = &req.Color
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}

	if err := vc.DB.Save(v).Error; err != nil {
		logger.Error("Failed to update vehicle", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update vehicle",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Vehicle updated",
		Data:    v,
	})
}

// Delete removes one of the requester's vehicles.
func (vc *VehicleController) Delete(c *fiber.Ctx) error {
	v, err := vc.ownedVehicle(c)
	if err != nil {
		return vc.vehicleLookupError(c, err)
	}

	if err := vc.DB.Delete(v).Error; err != nil {
		logger.Error("Failed to delete vehicle", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to delete vehicle",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Vehicle removed",
	})
}

// ownedVehicle loads the vehicle from the id route parameter, scoped to
// the requester.
func (vc *VehicleController) ownedVehicle(c *fiber.Ctx) (*vehicleModel.Vehicle, error) {
	id := c.Params("id")
	userID := middleware.CurrentUserID(c)

	var v vehicleModel.Vehicle
	err := vc.DB.Where("id = ? AND owner_id = ?", id, userID).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (vc *VehicleController) vehicleLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Vehicle not found",
		})
	}
	logger.Error("Failed to load vehicle", err)
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Failed to load vehicle",
	})
}

func (vc *VehicleController) audit(c *fiber.Ctx, eventType, details string) {
	userID := middleware.CurrentUserID(c)
	ip := c.IP()
	ua := c.Get("User-Agent")
	vc.Logger.Log(types.AuditEntry{
		Type:        eventType,
		UserID:      &userID,
		Details:     details,
		Timestamp:   time.Now().Unix(),
		ResidenceID: middleware.CurrentResidenceID(c),
		IPAddress:   &ip,
		UserAgent:   &ua,
	})
}
