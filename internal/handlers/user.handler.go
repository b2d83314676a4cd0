package handlers

import (
	"topup/internal/app"
	"topup/internal/handlers/middleware"
	"topup/internal/models"

	userController "topup/internal/controllers/users"

	"github.com/gofiber/fiber/v2"
)

const (
	MSG_FETCH_USERS_FAILED  = "Failed to fetch users"
	MSG_CREATE_USER_FAILED  = "Failed to create user"
	MSG_DELETE_USER_FAILED  = "Failed to delete user"
	MSG_DELETE_USER_SUCCESS = "User deleted successfully"
)

type UserHandler struct {
	Handler
	userController userController.UserControllerInterface
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	return &UserHandler{
		Handler:        newHandler(app, router, "user_handler"),
		userController: app.Controllers.User,
	}
}

func (h *UserHandler) Register() {
	users := h.router.Group("/users", h.middleware.RequireAuth())
	users.Get("/me", h.getCurrentUser)
	users.Get("/", h.list)
	users.Post("/", h.create)
	users.Delete("/:id", h.delete)
}

func (h *UserHandler) getCurrentUser(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": middleware.GetUser(c).ToProfile()})
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	var role *models.Role
	if raw := c.Query("role"); raw != "" {
		value := models.Role(raw)
		role = &value
	}

	users, err := h.userController.List(c.UserContext(), middleware.GetUser(c), role)
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_USERS_FAILED)
	}

	profiles := make([]models.UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.ToProfile())
	}
	return c.JSON(fiber.Map{"users": profiles})
}

func (h *UserHandler) create(c *fiber.Ctx) error {
	var request userController.CreateUserRequest
	if err := parseBody(c, &request); err != nil {
		return middleware.RespondError(c, err, MSG_CREATE_USER_FAILED)
	}

	user, err := h.userController.Create(c.UserContext(), middleware.GetUser(c), request)
	if err != nil {
		return middleware.RespondError(c, err, MSG_CREATE_USER_FAILED)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user.ToProfile()})
}

func (h *UserHandler) delete(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_USER_FAILED)
	}

	if err := h.userController.Delete(c.UserContext(), middleware.GetUser(c), userID); err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_USER_FAILED)
	}
	return c.JSON(fiber.Map{"message": MSG_DELETE_USER_SUCCESS})
}
