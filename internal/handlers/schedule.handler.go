package handlers

import (
	"time"
	"topup/internal/app"
	"topup/internal/handlers/middleware"
	"topup/internal/models"
	"topup/internal/types"

	"github.com/google/uuid"

	scheduleController "topup/internal/controllers/schedules"

	"github.com/gofiber/fiber/v2"
)

const (
	MSG_FETCH_SCHEDULES_FAILED  = "Failed to fetch cleaning schedules"
	MSG_SAVE_SCHEDULE_FAILED    = "Failed to save cleaning schedule"
	MSG_DELETE_SCHEDULES_FAILED = "Failed to delete cleaning schedules"
	MSG_SCHEDULE_CLEARED        = "Cleaning schedule deleted"
	MSG_APARTMENT_ID_REQUIRED   = "apartmentId is required"
)

type ScheduleHandler struct {
	Handler
	scheduleController scheduleController.ScheduleControllerInterface
	loc                *time.Location
}

// scheduleBody carries one of three booking shapes. The first non-nil slice
// wins, in the order bookings, scheduledDays, days. An explicitly empty
// bookings slice clears the month.
type scheduleBody struct {
	ApartmentID   uuid.UUID             `json:"apartmentId"`
	Year          int                   `json:"year"`
	Month         int                   `json:"month"`
	Bookings      []models.Booking      `json:"bookings"`
	ScheduledDays []models.ScheduledDay `json:"scheduledDays"`
	Days          []int                 `json:"days"`
	NotifyAdmin   bool                  `json:"notifyAdmin"`
}

func NewScheduleHandler(app app.App, router fiber.Router) *ScheduleHandler {
	return &ScheduleHandler{
		Handler:            newHandler(app, router, "schedule_handler"),
		scheduleController: app.Controllers.Schedule,
		loc:                app.Config.Location(),
	}
}

func (h *ScheduleHandler) Register() {
	schedules := h.router.Group("/cleaning-schedule", h.middleware.RequireAuth())
	schedules.Get("/", h.list)
	schedules.Post("/", h.save)
	schedules.Delete("/", h.deleteForApartment)
}

func (h *ScheduleHandler) list(c *fiber.Ctx) error {
	var query scheduleController.ListQuery
	var err error
	if query.ApartmentID, err = queryUUID(c, "apartmentId"); err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_SCHEDULES_FAILED)
	}
	if query.Year, err = queryInt(c, "year"); err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_SCHEDULES_FAILED)
	}
	if query.Month, err = queryInt(c, "month"); err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_SCHEDULES_FAILED)
	}

	schedules, err := h.scheduleController.List(c.UserContext(), middleware.GetUser(c), query)
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_SCHEDULES_FAILED)
	}
	return c.JSON(fiber.Map{"schedules": schedules})
}

func (h *ScheduleHandler) save(c *fiber.Ctx) error {
	var body scheduleBody
	if err := parseBody(c, &body); err != nil {
		return middleware.RespondError(c, err, MSG_SAVE_SCHEDULE_FAILED)
	}

	schedule, err := h.scheduleController.Save(
		c.UserContext(),
		middleware.GetUser(c),
		body.request(h.loc),
	)
	if err != nil {
		return middleware.RespondError(c, err, MSG_SAVE_SCHEDULE_FAILED)
	}
	if schedule == nil {
		return c.JSON(fiber.Map{"message": MSG_SCHEDULE_CLEARED, "schedule": nil})
	}
	return c.JSON(fiber.Map{"schedule": schedule})
}

func (h *ScheduleHandler) deleteForApartment(c *fiber.Ctx) error {
	apartmentID, err := queryUUID(c, "apartmentId")
	if err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_SCHEDULES_FAILED)
	}
	if apartmentID == nil {
		return middleware.RespondError(
			c,
			types.Validation(MSG_APARTMENT_ID_REQUIRED),
			MSG_DELETE_SCHEDULES_FAILED,
		)
	}

	if err := h.scheduleController.DeleteForApartment(
		c.UserContext(),
		middleware.GetUser(c),
		*apartmentID,
	); err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_SCHEDULES_FAILED)
	}
	return c.JSON(fiber.Map{"message": MSG_SCHEDULE_CLEARED})
}

// request turns whichever shape the body carries into bookings, dropping
// invalid entries. Day based shapes become one-night bookings. Bookings stay
// nil when no shape is present.
func (b scheduleBody) request(loc *time.Location) scheduleController.ScheduleRequest {
	request := scheduleController.ScheduleRequest{
		ApartmentID: b.ApartmentID,
		Year:        b.Year,
		Month:       b.Month,
		NotifyAdmin: b.NotifyAdmin,
	}

	switch {
	case b.Bookings != nil:
		request.Bookings = []models.Booking{}
		for _, booking := range b.Bookings {
			if booking.CheckIn.IsZero() || booking.CheckOut.IsZero() || !booking.Valid() {
				continue
			}
			request.Bookings = append(request.Bookings, booking)
		}
	case b.ScheduledDays != nil:
		request.Bookings = []models.Booking{}
		for _, d := range b.ScheduledDays {
			if validDay(d.Day) && d.GuestCount >= 1 {
				request.Bookings = append(request.Bookings, b.night(d.Day, d.GuestCount, loc))
			}
		}
	case b.Days != nil:
		request.Bookings = []models.Booking{}
		for _, day := range b.Days {
			if validDay(day) {
				request.Bookings = append(request.Bookings, b.night(day, 1, loc))
			}
		}
	}

	return request
}

func (b scheduleBody) night(day, guests int, loc *time.Location) models.Booking {
	checkIn := time.Date(b.Year, time.Month(b.Month), day, 0, 0, 0, 0, loc)
	return models.Booking{
		CheckIn:    checkIn,
		CheckOut:   checkIn.AddDate(0, 0, 1),
		GuestCount: guests,
	}
}

func validDay(day int) bool {
	return day >= 1 && day <= 31
}
