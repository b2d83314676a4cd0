package handlers

import (
	"time"
	"topup/internal/app"
	"topup/internal/handlers/middleware"
	"topup/internal/models"
	"topup/internal/types"

	unavailabilityController "topup/internal/controllers/unavailability"

	"github.com/gofiber/fiber/v2"
)

const (
	MSG_FETCH_REQUESTS_FAILED  = "Failed to fetch unavailability requests"
	MSG_CREATE_REQUEST_FAILED  = "Failed to create unavailability request"
	MSG_REVIEW_REQUEST_FAILED  = "Failed to update unavailability request"
	MSG_DELETE_REQUEST_FAILED  = "Failed to delete unavailability request"
	MSG_DELETE_REQUEST_SUCCESS = "Request deleted successfully"
	MSG_CHECK_FAILED           = "Failed to check availability"
	MSG_CHECK_DATE_REQUIRED    = "Date parameter is required"
)

type UnavailabilityHandler struct {
	Handler
	unavailabilityController unavailabilityController.UnavailabilityControllerInterface
	loc                      *time.Location
}

type reviewBody struct {
	Status models.UnavailabilityStatus `json:"status"`
}

func NewUnavailabilityHandler(app app.App, router fiber.Router) *UnavailabilityHandler {
	return &UnavailabilityHandler{
		Handler:                  newHandler(app, router, "unavailability_handler"),
		unavailabilityController: app.Controllers.Unavailability,
		loc:                      app.Config.Location(),
	}
}

func (h *UnavailabilityHandler) Register() {
	requests := h.router.Group("/unavailability-requests", h.middleware.RequireAuth())
	requests.Get("/", h.list)
	requests.Post("/", h.create)
	requests.Get("/check", h.check)
	requests.Patch("/:id", h.review)
	requests.Delete("/:id", h.delete)
}

func (h *UnavailabilityHandler) list(c *fiber.Ctx) error {
	operatorID, err := queryUUID(c, "operatorId")
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_REQUESTS_FAILED)
	}

	query := unavailabilityController.ListQuery{OperatorID: operatorID}
	if raw := c.Query("status"); raw != "" {
		status := models.UnavailabilityStatus(raw)
		query.Status = &status
	}

	requests, err := h.unavailabilityController.List(c.UserContext(), middleware.GetUser(c), query)
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_REQUESTS_FAILED)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

func (h *UnavailabilityHandler) create(c *fiber.Ctx) error {
	var request unavailabilityController.CreateRequest
	if err := parseBody(c, &request); err != nil {
		return middleware.RespondError(c, err, MSG_CREATE_REQUEST_FAILED)
	}

	created, err := h.unavailabilityController.Create(c.UserContext(), middleware.GetUser(c), request)
	if err != nil {
		return middleware.RespondError(c, err, MSG_CREATE_REQUEST_FAILED)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request": created})
}

func (h *UnavailabilityHandler) review(c *fiber.Ctx) error {
	requestID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_REVIEW_REQUEST_FAILED)
	}

	var body reviewBody
	if err := parseBody(c, &body); err != nil {
		return middleware.RespondError(c, err, MSG_REVIEW_REQUEST_FAILED)
	}

	reviewed, err := h.unavailabilityController.Review(
		c.UserContext(),
		middleware.GetUser(c),
		requestID,
		body.Status,
	)
	if err != nil {
		return middleware.RespondError(c, err, MSG_REVIEW_REQUEST_FAILED)
	}
	return c.JSON(fiber.Map{"request": reviewed})
}

func (h *UnavailabilityHandler) delete(c *fiber.Ctx) error {
	requestID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_REQUEST_FAILED)
	}

	if err := h.unavailabilityController.Delete(c.UserContext(), middleware.GetUser(c), requestID); err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_REQUEST_FAILED)
	}
	return c.JSON(fiber.Map{"message": MSG_DELETE_REQUEST_SUCCESS})
}

func (h *UnavailabilityHandler) check(c *fiber.Ctx) error {
	day, err := queryDate(c, "date", h.loc)
	if err != nil {
		return middleware.RespondError(c, err, MSG_CHECK_FAILED)
	}
	if day == nil {
		return middleware.RespondError(c, types.Validation(MSG_CHECK_DATE_REQUIRED), MSG_CHECK_FAILED)
	}

	operatorIDs, err := h.unavailabilityController.UnavailableOperators(
		c.UserContext(),
		middleware.GetUser(c),
		*day,
	)
	if err != nil {
		return middleware.RespondError(c, err, MSG_CHECK_FAILED)
	}
	return c.JSON(fiber.Map{"unavailableOperatorIds": operatorIDs})
}
