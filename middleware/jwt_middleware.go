package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"familyconnect/config"
	"familyconnect/models"
	"familyconnect/utils"
)

func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Try to get token from Authorization header first
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return utils.Unauthenticated("Invalid authorization format")
			}
			token = tokenParts[1]
		} else {
			// Fall back to cookie if header not present
			token = c.Cookies("access_token")
			if token == "" {
				return utils.Unauthenticated("Authorization required")
			}
		}

		claims, err := utils.ParseJWTToken(token)
		if err != nil {
			return utils.Unauthenticated("Invalid or expired token")
		}

		var user models.User
		if err := config.DB.First(&user, claims.UserID).Error; err != nil {
			return utils.Unauthenticated("User not found")
		}

		if !user.IsVerified {
			return utils.Unauthenticated("Please verify your email first")
		}

		c.Locals("user", &user)
		c.Locals("userID", user.ID)

		return c.Next()
	}
}

// CurrentUser pulls the authenticated user stashed by Protected.
func CurrentUser(c *fiber.Ctx) *models.User {
	return c.Locals("user").(*models.User)
}
