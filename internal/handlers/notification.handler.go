package handlers

import (
	"topup/internal/app"
	"topup/internal/handlers/middleware"

	notificationController "topup/internal/controllers/notifications"

	"github.com/gofiber/fiber/v2"
)

const (
	MSG_FETCH_NOTIFICATIONS_FAILED  = "Failed to fetch notifications"
	MSG_UPDATE_NOTIFICATIONS_FAILED = "Failed to update notifications"
	MSG_DELETE_NOTIFICATIONS_FAILED = "Failed to delete notifications"
	MSG_CLEANUP_FAILED              = "Failed to start notification cleanup"
	MSG_CLEANUP_STARTED             = "Notification cleanup started"
)

type NotificationHandler struct {
	Handler
	notificationController notificationController.NotificationControllerInterface
}

func NewNotificationHandler(app app.App, router fiber.Router) *NotificationHandler {
	return &NotificationHandler{
		Handler:                newHandler(app, router, "notification_handler"),
		notificationController: app.Controllers.Notification,
	}
}

func (h *NotificationHandler) Register() {
	notifications := h.router.Group("/notifications", h.middleware.RequireAuth())
	notifications.Get("/", h.inbox)
	notifications.Patch("/", h.mark)
	notifications.Delete("/all", h.deleteAll)
	notifications.Post("/cleanup", h.cleanup)
}

func (h *NotificationHandler) inbox(c *fiber.Ctx) error {
	inbox, err := h.notificationController.Inbox(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_NOTIFICATIONS_FAILED)
	}
	return c.JSON(inbox)
}

func (h *NotificationHandler) mark(c *fiber.Ctx) error {
	var request notificationController.MarkRequest
	if err := parseBody(c, &request); err != nil {
		return middleware.RespondError(c, err, MSG_UPDATE_NOTIFICATIONS_FAILED)
	}

	updated, err := h.notificationController.Mark(c.UserContext(), middleware.GetUser(c), request)
	if err != nil {
		return middleware.RespondError(c, err, MSG_UPDATE_NOTIFICATIONS_FAILED)
	}
	return c.JSON(fiber.Map{"updated": updated})
}

func (h *NotificationHandler) deleteAll(c *fiber.Ctx) error {
	deleted, err := h.notificationController.DeleteAll(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_NOTIFICATIONS_FAILED)
	}
	return c.JSON(fiber.Map{"deletedCount": deleted})
}

func (h *NotificationHandler) cleanup(c *fiber.Ctx) error {
	if err := h.notificationController.RunCleanup(c.UserContext(), middleware.GetUser(c)); err != nil {
		return middleware.RespondError(c, err, MSG_CLEANUP_FAILED)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": MSG_CLEANUP_STARTED})
}
