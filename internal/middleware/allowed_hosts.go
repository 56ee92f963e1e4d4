package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AllowedHosts rejects requests whose Host header is not in the allow-list.
// An empty list disables the check.
func AllowedHosts(hosts []string) fiber.Handler {
	allowed := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		allowed[strings.ToLower(h)] = true
	}

	return func(c *fiber.Ctx) error {
		if len(allowed) == 0 {
			return c.Next()
		}
		host := strings.ToLower(c.Hostname())
		if !allowed[host] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid Host header",
			})
		}
		return c.Next()
	}
}
