package middleware

import (
	"log"
	"strings"

	"oneset/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie that carries the session token for page routes.
const SessionCookie = "session"

// AuthRequired is a Fiber middleware for API routes. It accepts the token
// either as "Authorization: Bearer <token>" or from the session cookie,
// and responds 401 when neither is valid.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		storeClaims(c, claims)
		return c.Next()
	}
}

// LoginRequired is a Fiber middleware for server-rendered pages. An
// unauthenticated request is redirected to the login page instead of
// receiving a JSON error.
func LoginRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			return c.Redirect("/login", fiber.StatusFound)
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("Session validation failed: %v", err)
			return c.Redirect("/login", fiber.StatusFound)
		}

		storeClaims(c, claims)
		return c.Next()
	}
}

// tokenFromRequest prefers the Authorization header, falling back to the
// session cookie so browser clients can use the API directly.
func tokenFromRequest(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Cookies(SessionCookie)
}

// storeClaims stores identity claims in the Fiber context for subsequent handlers.
func storeClaims(c *fiber.Ctx, claims jwt.MapClaims) {
	c.Locals("user_id", claims["user_id"])
	c.Locals("username", claims["username"])
	if isSuper, ok := claims["is_superuser"].(bool); ok {
		c.Locals("is_superuser", isSuper)
	} else {
		c.Locals("is_superuser", false)
	}
}

// UserID extracts the authenticated user's ID from the Fiber context.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}

// IsSuperuser reports whether the authenticated user is a superuser.
func IsSuperuser(c *fiber.Ctx) bool {
	isSuper, _ := c.Locals("is_superuser").(bool)
	return isSuper
}
