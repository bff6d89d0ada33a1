package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"residence-access/constants"
	"residence-access/logger"
	"residence-access/middleware"
	adminModel "residence-access/models/admin"
	eventModel "residence-access/models/event"
	otpModel "residence-access/models/otp"
	userModel "residence-access/models/user"
	otpService "residence-access/services/otp"
	"residence-access/types"
	authTypes "residence-access/types/auth"
	"residence-access/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// principal is a resolved account from either the admin or the user table.
type principal struct {
	ID           string
	Username     string
	Role         string
	PasswordHash string
	ResidenceID  *string
}

// AuthController handles login, logout and OTP verification.
type AuthController struct {
	DB     *gorm.DB
	OTP    *otpService.Service
	Logger *logger.AsyncLogger
}

// NewAuthController creates a new auth controller
func NewAuthController(db *gorm.DB, otp *otpService.Service, asyncLogger *logger.AsyncLogger) *AuthController {
	return &AuthController{DB: db, OTP: otp, Logger: asyncLogger}
}

// setAccessCookie mirrors the 30-day session cookie of the web frontend.
func (ac *AuthController) setAccessCookie(c *fiber.Ctx, token string) {
	isProduction := os.Getenv("APP_ENV") == "production"

	c.Cookie(&fiber.Cookie{
		Name:     "access",
		Value:    token,
		HTTPOnly: true,
		Secure:   isProduction,
		SameSite: "Strict",
		MaxAge:   int(utils.TokenTTL.Seconds()),
		Path:     "/",
	})
}

func (ac *AuthController) findByUsername(username string) (*principal, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	var adm adminModel.Admin
	err := ac.DB.Where("username = ?", username).First(&adm).Error
	if err == nil {
		role := constants.RoleAdmin
		if adm.IsSuperAdmin {
			role = constants.RoleSuperAdmin
		}
		return &principal{
			ID:           adm.ID,
			Username:     adm.Username,
			Role:         role,
			PasswordHash: adm.PasswordHash,
			ResidenceID:  adm.ResidenceID,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var usr userModel.User
	err = ac.DB.Where("username = ?", username).First(&usr).Error
	if err != nil {
		return nil, err
	}
	return &principal{
		ID:           usr.ID,
		Username:     usr.Username,
		Role:         string(usr.Role),
		PasswordHash: usr.PasswordHash,
		ResidenceID:  usr.ResidenceID,
	}, nil
}

func (ac *AuthController) findByEmail(email string) (*principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var adm adminModel.Admin
	err := ac.DB.Where("email = ?", email).First(&adm).Error
	if err == nil {
		role := constants.RoleAdmin
		if adm.IsSuperAdmin {
			role = constants.RoleSuperAdmin
		}
		return &principal{ID: adm.ID, Username: adm.Username, Role: role, ResidenceID: adm.ResidenceID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var usr userModel.User
	err = ac.DB.Where("email = ?", email).First(&usr).Error
	if err != nil {
		return nil, err
	}
	return &principal{ID: usr.ID, Username: usr.Username, Role: string(usr.Role), ResidenceID: usr.ResidenceID}, nil
}

// Identify reports which role a username belongs to, so the login page
// can pick the right form.
func (ac *AuthController) Identify(c *fiber.Ctx) error {
	username := c.Query("username")
	if strings.TrimSpace(username) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Username is required",
		})
	}

	p, err := ac.findByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Unknown username",
			})
		}
		logger.Error("Failed to identify username", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Role identified",
		Data:    fiber.Map{"role": p.Role},
	})
}

// Login authenticates a username/password pair and issues a JWT.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req authTypes.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Username and password are required",
		})
	}

	p, err := ac.findByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Invalid username or password",
			})
		}
		logger.Error("Failed to load account", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid username or password",
		})
	}

	token, err := utils.GenerateToken(p.ID, p.Username, p.Role, p.ResidenceID)
	if err != nil {
		logger.Error("Failed to issue token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to issue token",
		})
	}

	ac.setAccessCookie(c, token)
	ac.audit(c, eventModel.TypeLogin, p, fmt.Sprintf("%s logged in", p.Username))
	logger.Success(fmt.Sprintf("Login successful for %s (%s)", p.Username, p.Role))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Login successful",
		Token:   token,
		Data:    fiber.Map{"id": p.ID, "username": p.Username, "role": p.Role},
	})
}

// RequestOTP emails a one-time login code to a known account address.
func (ac *AuthController) RequestOTP(c *fiber.Ctx) error {
	var req authTypes.RequestOTPRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Email) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Email is required",
		})
	}

	if _, err := ac.findByEmail(req.Email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Do not reveal which addresses exist.
			return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
				Status:  fiber.StatusOK,
				Message: "If the address is registered, a code has been sent",
			})
		}
		logger.Error("Failed to load account by email", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if _, err := ac.OTP.SendOTP(strings.ToLower(strings.TrimSpace(req.Email)), otpModel.OTPPurposeLogin); err != nil {
		return c.Status(fiber.StatusTooManyRequests).JSON(types.ApiResponse{
			Status:  fiber.StatusTooManyRequests,
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "If the address is registered, a code has been sent",
	})
}

// VerifyOTP completes a passwordless login with an emailed code.
func (ac *AuthController) VerifyOTP(c *fiber.Ctx) error {
	var req authTypes.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if req.Email == "" || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Email and code are required",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	ok, err := ac.OTP.VerifyOTP(email, req.Code, otpModel.OTPPurposeLogin)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid or expired code",
		})
	}

	p, err := ac.findByEmail(email)
	if err != nil {
		logger.Error("Failed to load account by email", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	token, err := utils.GenerateToken(p.ID, p.Username, p.Role, p.ResidenceID)
	if err != nil {
		logger.Error("Failed to issue token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to issue token",
		})
	}

	ac.setAccessCookie(c, token)
	ac.audit(c, eventModel.TypeLogin, p, fmt.Sprintf("%s logged in via email code", p.Username))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Login successful",
		Token:   token,
		Data:    fiber.Map{"id": p.ID, "username": p.Username, "role": p.Role},
	})
}

// Logout clears the access cookie.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:    "access",
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})

	userID := middleware.CurrentUserID(c)
	if userID != "" {
		ac.Logger.Log(types.AuditEntry{
			Type:      eventModel.TypeLogout,
			UserID:    &userID,
			Details:   "logged out",
			Timestamp: time.Now().Unix(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Logged out",
	})
}

// Profile returns the authenticated principal's account record.
func (ac *AuthController) Profile(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}

	var adm adminModel.Admin
	if err := ac.DB.First(&adm, "id = ?", userID).Error; err == nil {
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "Profile loaded",
			Data:    adm,
		})
	}

	var usr userModel.User
	if err := ac.DB.First(&usr, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Account not found",
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Profile loaded",
		Data:    usr,
	})
}

func (ac *AuthController) audit(c *fiber.Ctx, eventType string, p *principal, details string) {
	ip := c.IP()
	ua := c.Get("User-Agent")
	ac.Logger.Log(types.AuditEntry{
		Type:        eventType,
		UserID:      &p.ID,
		Details:     details,
		Timestamp:   time.Now().Unix(),
		ResidenceID: p.ResidenceID,
		IPAddress:   &ip,
		UserAgent:   &ua,
	})
}
