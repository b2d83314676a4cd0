package handlers

import (
	"topup/internal/app"
	"topup/internal/handlers/middleware"

	apartmentController "topup/internal/controllers/apartments"

	"github.com/gofiber/fiber/v2"
)

const (
	MSG_FETCH_APARTMENTS_FAILED  = "Failed to fetch apartments"
	MSG_FETCH_APARTMENT_FAILED   = "Failed to fetch apartment"
	MSG_CREATE_APARTMENT_FAILED  = "Failed to create apartment"
	MSG_UPDATE_APARTMENT_FAILED  = "Failed to update apartment"
	MSG_DELETE_APARTMENT_FAILED  = "Failed to delete apartment"
	MSG_DELETE_APARTMENT_SUCCESS = "Apartment deleted successfully"
)

type ApartmentHandler struct {
	Handler
	apartmentController apartmentController.ApartmentControllerInterface
}

func NewApartmentHandler(app app.App, router fiber.Router) *ApartmentHandler {
	return &ApartmentHandler{
		Handler:             newHandler(app, router, "apartment_handler"),
		apartmentController: app.Controllers.Apartment,
	}
}

func (h *ApartmentHandler) Register() {
	apartments := h.router.Group("/apartments", h.middleware.RequireAuth())
	apartments.Get("/", h.list)
	apartments.Post("/", h.create)
	apartments.Get("/:id", h.get)
	apartments.Patch("/:id", h.update)
	apartments.Delete("/:id", h.delete)
}

func (h *ApartmentHandler) list(c *fiber.Ctx) error {
	ownerID, err := queryUUID(c, "owner")
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_APARTMENTS_FAILED)
	}

	apartments, err := h.apartmentController.List(c.UserContext(), middleware.GetUser(c), ownerID)
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_APARTMENTS_FAILED)
	}
	return c.JSON(fiber.Map{"apartments": apartments})
}

func (h *ApartmentHandler) get(c *fiber.Ctx) error {
	apartmentID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_APARTMENT_FAILED)
	}

	apartment, err := h.apartmentController.Get(c.UserContext(), middleware.GetUser(c), apartmentID)
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_APARTMENT_FAILED)
	}
	return c.JSON(fiber.Map{"apartment": apartment})
}

func (h *ApartmentHandler) create(c *fiber.Ctx) error {
	var request apartmentController.ApartmentRequest
	if err := parseBody(c, &request); err != nil {
		return middleware.RespondError(c, err, MSG_CREATE_APARTMENT_FAILED)
	}

	apartment, err := h.apartmentController.Create(c.UserContext(), middleware.GetUser(c), request)
	if err != nil {
		return middleware.RespondError(c, err, MSG_CREATE_APARTMENT_FAILED)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"apartment": apartment})
}

func (h *ApartmentHandler) update(c *fiber.Ctx) error {
	apartmentID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_UPDATE_APARTMENT_FAILED)
	}

	var request apartmentController.ApartmentRequest
	if err := parseBody(c, &request); err != nil {
		return middleware.RespondError(c, err, MSG_UPDATE_APARTMENT_FAILED)
	}

	apartment, err := h.apartmentController.Update(
		c.UserContext(),
		middleware.GetUser(c),
		apartmentID,
		request,
	)
	if err != nil {
		return middleware.RespondError(c, err, MSG_UPDATE_APARTMENT_FAILED)
	}
	return c.JSON(fiber.Map{"apartment": apartment})
}

func (h *ApartmentHandler) delete(c *fiber.Ctx) error {
	apartmentID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_APARTMENT_FAILED)
	}

	if err := h.apartmentController.Delete(c.UserContext(), middleware.GetUser(c), apartmentID); err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_APARTMENT_FAILED)
	}
	return c.JSON(fiber.Map{"message": MSG_DELETE_APARTMENT_SUCCESS})
}
