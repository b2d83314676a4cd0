package handlers

import (
	"time"
	"topup/internal/app"
	"topup/internal/handlers/middleware"
	"topup/internal/services"

	authController "topup/internal/controllers/auth"

	"github.com/gofiber/fiber/v2"
)

const (
	MSG_REGISTER_FAILED = "Failed to register user"
	MSG_LOGIN_FAILED    = "Failed to log in"
	MSG_LOGOUT_SUCCESS  = "Logged out successfully"
)

type AuthHandler struct {
	Handler
	authController authController.AuthControllerInterface
	expiry         time.Duration
	secureCookie   bool
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	return &AuthHandler{
		Handler:        newHandler(app, router, "auth_handler"),
		authController: app.Controllers.Auth,
		expiry:         app.Config.JWTExpiry(),
		secureCookie:   app.Config.Environment == "production",
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")

	auth.Post("/register", h.register)
	auth.Post("/login", h.login)

	protected := auth.Group("/", h.middleware.RequireAuth())
	protected.Post("/logout", h.logout)
	protected.Get("/me", h.me)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var request authController.RegisterRequest
	if err := parseBody(c, &request); err != nil {
		return middleware.RespondError(c, err, MSG_REGISTER_FAILED)
	}

	session, err := h.authController.Register(c.UserContext(), request)
	if err != nil {
		return middleware.RespondError(c, err, MSG_REGISTER_FAILED)
	}

	h.setSessionCookie(c, session.Token, h.expiry)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  session.User.ToProfile(),
		"token": session.Token,
	})
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var request authController.LoginRequest
	if err := parseBody(c, &request); err != nil {
		return middleware.RespondError(c, err, MSG_LOGIN_FAILED)
	}

	session, err := h.authController.Login(c.UserContext(), request)
	if err != nil {
		return middleware.RespondError(c, err, MSG_LOGIN_FAILED)
	}

	h.setSessionCookie(c, session.Token, h.expiry)
	return c.JSON(fiber.Map{
		"user":  session.User.ToProfile(),
		"token": session.Token,
	})
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if err := h.authController.Logout(c.UserContext(), middleware.GetClaims(c)); err != nil {
		h.log.TraceFromContext(c.UserContext()).Function("logout").Er("logout failed", err)
	}

	h.setSessionCookie(c, "", -time.Hour)
	return c.JSON(fiber.Map{"message": MSG_LOGOUT_SUCCESS})
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": middleware.GetUser(c).ToProfile()})
}

// setSessionCookie with a negative maxAge expires the cookie.
func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, maxAge time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     services.TOKEN_COOKIE_NAME,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(maxAge),
		MaxAge:   int(maxAge.Seconds()),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
