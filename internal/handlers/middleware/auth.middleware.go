package middleware

import (
	"context"
	"strings"
	"topup/internal/models"
	"topup/internal/services"
	"topup/internal/types"

	"github.com/gofiber/fiber/v2"
)

type AuthContextKey string

const (
	UserKey        AuthContextKey = "user"
	UserKeyFiber   string         = "User"
	ClaimsKeyFiber string         = "Claims"

	MSG_AUTH_REQUIRED = "Unauthorized"
)

// RequireAuth accepts a bearer token or the session cookie and stores the
// resolved user in the request.
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := m.log.TraceFromContext(c.UserContext()).Function("RequireAuth")

		token := TokenFromRequest(c)
		if token == "" {
			return RespondError(c, types.Unauthorized(MSG_AUTH_REQUIRED), MSG_AUTH_REQUIRED)
		}

		user, claims, err := m.auth.Authenticate(c.UserContext(), token)
		if err != nil {
			log.Info("token rejected", "error", err.Error())
			return RespondError(c, err, MSG_AUTH_REQUIRED)
		}

		c.Locals(UserKeyFiber, user)
		c.Locals(ClaimsKeyFiber, claims)

		ctx := context.WithValue(c.UserContext(), UserKey, user)
		c.SetUserContext(ctx)

		info := claims.TokenInfo()
		log.Debug("user authenticated", "userID", info.UserID, "role", info.Role)
		return c.Next()
	}
}

// TokenFromRequest reads "Authorization: Bearer <token>" and falls back to
// the session cookie.
func TokenFromRequest(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return c.Cookies(services.TOKEN_COOKIE_NAME)
}

func GetUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals(UserKeyFiber).(*models.User)
	if !ok {
		return nil
	}
	return user
}

func GetClaims(c *fiber.Ctx) *services.SessionClaims {
	claims, ok := c.Locals(ClaimsKeyFiber).(*services.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
