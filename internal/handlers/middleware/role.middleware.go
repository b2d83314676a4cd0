package middleware

import (
	"topup/internal/models"
	"topup/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// RequireRole must run after RequireAuth.
func (m *Middleware) RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if err := policy.RequireRole(user, "", roles...); err != nil {
			if user != nil {
				m.log.TraceFromContext(c.UserContext()).Function("RequireRole").
					Info("role rejected", "userID", user.ID, "role", user.Role)
			}
			return RespondError(c, err, "")
		}
		return c.Next()
	}
}
