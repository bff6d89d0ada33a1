package middleware

import (
	"strings"

	"residence-access/constants"
	"residence-access/types"
	"residence-access/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// IsAuthenticated checks for a valid JWT (Authorization header or the
// access cookie) and that the principal's role is one of allowedRoles.
// constants.RoleAny admits any authenticated principal. Claims are
// attached to the request context under "user".
func IsAuthenticated(allowedRoles []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var token string

		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
					Status:  fiber.StatusUnauthorized,
					Message: "Invalid authorization header format",
				})
			}
			token = tokenParts[1]
		} else {
			token = c.Cookies("access")
			if token == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
					Status:  fiber.StatusUnauthorized,
					Message: "Authorization token missing",
				})
			}
		}

		claims, err := utils.VerifyToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Session expired. Login again.",
			})
		}

		role, _ := claims["role"].(string)
		if !roleAllowed(role, allowedRoles) {
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Status:  fiber.StatusForbidden,
				Message: "Insufficient permissions",
			})
		}

		c.Locals("user", claims)
		return c.Next()
	}
}

// RequireRoles admits only the listed roles.
func RequireRoles(roles ...string) fiber.Handler {
	return IsAuthenticated(roles)
}

// RequireAuthentication admits any authenticated principal.
func RequireAuthentication() fiber.Handler {
	return IsAuthenticated([]string{constants.RoleAny})
}

func roleAllowed(role string, allowedRoles []string) bool {
	for _, allowed := range allowedRoles {
		if allowed == constants.RoleAny || allowed == role {
			return true
		}
	}
	return false
}

// CurrentUserID returns the authenticated principal's id from the claims.
func CurrentUserID(c *fiber.Ctx) string {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return ""
	}
	id, _ := claims["sub"].(string)
	return id
}

// CurrentRole returns the authenticated principal's role.
func CurrentRole(c *fiber.Ctx) string {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}

// CurrentResidenceID returns the principal's residence scope, or nil for
// super admins.
func CurrentResidenceID(c *fiber.Ctx) *string {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return nil
	}
	id, _ := claims["residence_id"].(string)
	if id == "" {
		return nil
	}
	return &id
}
