package guestpass

import (
	"errors"
	"fmt"
	"time"

	"residence-access/constants"
	"residence-access/logger"
	"residence-access/middleware"
	eventModel "residence-access/models/event"
	passModel "residence-access/models/guestpass"
	passService "residence-access/services/guestpass"
	"residence-access/types"
	passTypes "residence-access/types/guestpass"
	"residence-access/utils"

	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

// GuestPassController handles guest-pass HTTP requests.
type GuestPassController struct {
	DB      *gorm.DB
	Service *passService.Service
	Logger  *logger.AsyncLogger
}

// NewGuestPassController creates a new guest pass controller
func NewGuestPassController(db *gorm.DB, svc *passService.Service, asyncLogger *logger.AsyncLogger) *GuestPassController {
	return &GuestPassController{DB: db, Service: svc, Logger: asyncLogger}
}

// Store issues a new guest or delivery pass owned by the requester.
func (gc *GuestPassController) Store(c *fiber.Ctx) error {
	var req passTypes.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	userID := middleware.CurrentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}

	visitTime, err := utils.ParseVisitTime(req.VisitTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	passType := passModel.PassType(req.Type)
	if passType != passModel.TypeFoodDelivery {
		passType = passModel.TypeVisitors
	}

	input := passService.IssueInput{
		PlateNumber:     req.PlateNumber,
		Name:            req.Name,
		Phone:           req.Phone,
		VisitTime:       visitTime,
		DurationMinutes: req.DurationMinutes,
		Type:            passType,
		OwnerID:         userID,
		ResidenceID:     middleware.CurrentResidenceID(c),
		EntryGate:       utils.OptionalString(req.EntryGate),
		Notes:           utils.OptionalString(req.Notes),
	}
	if constants.IsPrivileged(middleware.CurrentRole(c)) {
		input.ApprovedBy = &userID
	}

	pass, err := gc.Service.Issue(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, passService.ErrMissingFields),
			errors.Is(err, passService.ErrInvalidDuration),
			errors.Is(err, passService.ErrOwnVehiclePlate):
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: err.Error(),
			})
		default:
			logger.Error("Failed to create guest pass", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Failed to create guest pass",
			})
		}
	}

	gc.audit(c, eventModel.TypePassCreated, fmt.Sprintf("pass %s issued for plate %s", pass.ID, pass.PlateNumber))
	logger.Success(fmt.Sprintf("Guest pass created: %s", pass.ID))

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Guest pass created successfully",
		Data:    pass,
	})
}

// Index lists the requester's live passes. The type query parameter
// switches between visitor and food-delivery passes.
func (gc *GuestPassController) Index(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	passType := passModel.PassType(c.Query("type"))
	if passType != passModel.TypeFoodDelivery {
		passType = passModel.TypeVisitors
	}

	passes, err := gc.Service.ActivePasses(c.Context(), userID, passType)
	if err != nil {
		logger.Error("Failed to list guest passes", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to list guest passes",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Guest passes loaded",
		Data:    passes,
	})
}

// History lists the requester's archived passes.
func (gc *GuestPassController) History(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	rows, err := gc.Service.History(c.Context(), userID)
	if err != nil {
		logger.Error("Failed to list guest pass history", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to list guest pass history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Guest pass history loaded",
		Data:    rows,
	})
}

// Revoke archives an active pass ahead of its expiration.
func (gc *GuestPassController) Revoke(c *fiber.Ctx) error {
	var req passTypes.RevokeRequest
	if err := c.BodyParser(&req); err != nil || req.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Missing guest pass id",
		})
	}

	userID := middleware.CurrentUserID(c)
	privileged := constants.IsPrivileged(middleware.CurrentRole(c))

	err := gc.Service.Revoke(c.Context(), req.ID, userID, privileged)
	if err != nil {
		if errors.Is(err, passService.ErrPassNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: err.Error(),
			})
		}
		logger.Error("Failed to revoke guest pass", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to revoke guest pass",
		})
	}

	gc.audit(c, eventModel.TypePassRevoked, fmt.Sprintf("pass %s revoked", req.ID))
	logger.Success(fmt.Sprintf("Guest pass revoked: %s", req.ID))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Guest pass revoked",
	})
}

// Extend pushes out the expiration boundary of an active pass.
func (gc *GuestPassController) Extend(c *fiber.Ctx) error {
	var req passTypes.ExtendRequest
	if err := c.BodyParser(&req); err != nil || req.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Missing guest pass id",
		})
	}

	userID := middleware.CurrentUserID(c)
	privileged := constants.IsPrivileged(middleware.CurrentRole(c))

	pass, err := gc.Service.Extend(c.Context(), req.ID, userID, req.AdditionalMinutes, privileged)
	if err != nil {
		switch {
		case errors.Is(err, passService.ErrInvalidDuration):
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: err.Error(),
			})
		case errors.Is(err, passService.ErrPassNotFound):
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: err.Error(),
			})
		case errors.Is(err, passService.ErrPassNotActive):
			return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
				Status:  fiber.StatusConflict,
				Message: err.Error(),
			})
		default:
			logger.Error("Failed to extend guest pass", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Failed to extend guest pass",
			})
		}
	}

	gc.audit(c, eventModel.TypePassExtended,
		fmt.Sprintf("pass %s extended by %d minutes", req.ID, req.AdditionalMinutes))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Guest pass extended",
		Data:    pass,
	})
}

// Verify checks whether a plate has a pass authorizing entry right now.
// Used at the gate by guards.
func (gc *GuestPassController) Verify(c *fiber.Ctx) error {
	plate := c.Query("plate")
	if plate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Plate number is required",
		})
	}

	pass, valid, err := gc.Service.VerifyPlate(c.Context(), plate, middleware.CurrentResidenceID(c))
	if err != nil {
		if errors.Is(err, passService.ErrPassNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "No active pass for this plate",
				Data:    fiber.Map{"valid": false},
			})
		}
		logger.Error("Failed to verify plate", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to verify plate",
		})
	}

	gc.audit(c, eventModel.TypePassVerified,
		fmt.Sprintf("plate %s checked at gate, valid=%t", plate, valid))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Plate checked",
		Data:    fiber.Map{"valid": valid, "pass": pass},
	})
}

// QRCode renders a pass as a QR image for display at the gate.
func (gc *GuestPassController) QRCode(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := middleware.CurrentUserID(c)
	privileged := constants.IsPrivileged(middleware.CurrentRole(c))

	pass, err := gc.Service.Get(c.Context(), id, userID, privileged)
	if err != nil {
		if errors.Is(err, passService.ErrPassNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: err.Error(),
			})
		}
		logger.Error("Failed to load guest pass", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to load guest pass",
		})
	}

	payload := fmt.Sprintf("pass:%s|plate:%s|until:%d", pass.ID, pass.PlateNumber, pass.ExpiresAt())
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		logger.Error("Failed to encode QR code", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to render QR code",
		})
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}

func (gc *GuestPassController) audit(c *fiber.Ctx, eventType, details string) {
	userID := middleware.CurrentUserID(c)
	ip := c.IP()
	ua := c.Get("User-Agent")
	gc.Logger.Log(types.AuditEntry{
		Type:        eventType,
		UserID:      &userID,
		Details:     details,
		Timestamp:   time.Now().Unix(),
		ResidenceID: middleware.CurrentResidenceID(c),
		IPAddress:   &ip,
		UserAgent:   &ua,
	})
}
