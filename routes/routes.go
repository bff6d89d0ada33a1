package routes

import (
	"residence-access/constants"
	"residence-access/controllers/auth"
	"residence-access/controllers/dashboard"
	"residence-access/controllers/guestpass"
	"residence-access/controllers/vehicle"
	"residence-access/logger"
	"residence-access/middleware"
	passService "residence-access/services/guestpass"
	otpService "residence-access/services/otp"
	"residence-access/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) *passService.Service {
	asyncLogger := logger.NewAsyncLogger(db)
	passSvc := passService.NewService(db)
	otpSvc := otpService.NewOTPService(db)

	authController := auth.NewAuthController(db, otpSvc, asyncLogger)
	passController := guestpass.NewGuestPassController(db, passSvc, asyncLogger)
	vehicleController := vehicle.NewVehicleController(db, asyncLogger)
	dashboardController := dashboard.NewDashboardController(db)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	if err := otpSvc.CleanupExpiredOTPs(); err != nil {
		logger.Warning("Failed to clean up expired OTP codes: " + err.Error())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "ok",
		})
	})

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Get("/auth/identify", authController.Identify)
	api.Post("/auth/login", authController.Login)
	api.Post("/auth/request-otp", authController.RequestOTP)
	api.Post("/auth/verify-otp", authController.VerifyOTP)

	/*=============================================================================
	| Authenticated Routes
	===============================================================================*/
	authGroup := api.Group("/auth").Use(middleware.RequireAuthentication())
	authGroup.Post("/logout", authController.Logout)
	authGroup.Get("/profile", authController.Profile)

	/*=============================================================================
	| Guest Pass Routes
	===============================================================================*/
	passGroup := api.Group("/guest-pass").Use(middleware.RequireRoles(constants.PassIssuerRoles...))
	passGroup.Post("/create", passController.Store)
	passGroup.Get("/list", passController.Index)
	passGroup.Get("/history", passController.History)
	passGroup.Post("/revoke", passController.Revoke)
	passGroup.Post("/extend", passController.Extend)
	passGroup.Get("/:id/qr", passController.QRCode)

	// Gate check is for guards and admins only, not residents.
	passGroup.Get("/verify", middleware.RequireRoles(constants.PrivilegedRoles...), passController.Verify)

	/*=============================================================================
	| Vehicle Routes
	===============================================================================*/
	vehicleGroup := api.Group("/vehicle").Use(middleware.RequireRoles(
		constants.RoleResident, constants.RoleAdmin, constants.RoleSuperAdmin,
	))
	vehicleGroup.Post("/create", vehicleController.Store)
	vehicleGroup.Get("/list", vehicleController.Index)
	vehicleGroup.Put("/:id", vehicleController.Update)
	vehicleGroup.Delete("/:id", vehicleController.Delete)

	/*=============================================================================
	| Dashboard Routes
	===============================================================================*/
	dashboardGroup := api.Group("/dashboard").Use(middleware.RequireRoles(constants.AdminRoles...))
	dashboardGroup.Get("/summary", dashboardController.Summary)
	dashboardGroup.Get("/recent-activity", dashboardController.RecentActivity)

	return passSvc
}
