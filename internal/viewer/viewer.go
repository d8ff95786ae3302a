// Package viewer threads the caller's internal/external classification
// through the request as an explicit value instead of ambient state. Identity
// is a client-side toggle in this system, not a security boundary.
package viewer

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/uts-support/ticket-service/internal/domain"
)

// HeaderName carries the viewer classification on requests.
const HeaderName = "X-User-Type"

const contextKey = "viewerUserType"

// Middleware parses the X-User-Type header into the request context.
// Unknown or missing values default to external, the more restrictive view.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userType := domain.UserType(strings.ToLower(strings.TrimSpace(c.Get(HeaderName))))
		if !userType.IsValid() {
			userType = domain.UserTypeExternal
		}
		c.Locals(contextKey, userType)
		return c.Next()
	}
}

// FromContext returns the viewer classification set by Middleware.
func FromContext(c *fiber.Ctx) domain.UserType {
	if userType, ok := c.Locals(contextKey).(domain.UserType); ok {
		return userType
	}
	return domain.UserTypeExternal
}
