package middleware

import (
	"gotalk/server/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates JWT token from cookie
func AuthMiddleware(c *fiber.Ctx) error {
	// Get token from cookie
	tokenString := c.Cookies("token")
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized - No token provided",
		})
	}

	// Validate token
	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized - Invalid token",
		})
	}

	// Store user info in context
	c.Locals("userID", claims.UserID)
	c.Locals("profileID", claims.ProfileID)
	c.Locals("email", claims.Email)

	return c.Next()
}

// OptionalAuth populates the user identity when a valid token cookie is
// present but never rejects the request. Public pages and the presence
// tracker both need to know who the caller is without requiring login.
func OptionalAuth(c *fiber.Ctx) error {
	tokenString := c.Cookies("token")
	if tokenString != "" {
		if claims, err := utils.ValidateToken(tokenString); err == nil {
			c.Locals("userID", claims.UserID)
			c.Locals("profileID", claims.ProfileID)
			c.Locals("email", claims.Email)
		}
	}
	return c.Next()
}

// GetUserID gets user ID from context, 0 when anonymous
func GetUserID(c *fiber.Ctx) int64 {
	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return 0
	}
	return userID
}

// GetProfileID gets the caller's profile ID from context, 0 when anonymous
func GetProfileID(c *fiber.Ctx) int64 {
	profileID, ok := c.Locals("profileID").(int64)
	if !ok {
		return 0
	}
	return profileID
}

// GetUserEmail gets user email from context
func GetUserEmail(c *fiber.Ctx) string {
	email, ok := c.Locals("email").(string)
	if !ok {
		return ""
	}
	return email
}
