package handlers

import (
	"time"
	"topup/internal/app"
	"topup/internal/handlers/middleware"
	"topup/internal/models"

	shiftController "topup/internal/controllers/shifts"

	"github.com/gofiber/fiber/v2"
)

const (
	MSG_FETCH_SHIFTS_FAILED   = "Failed to fetch shifts"
	MSG_FETCH_SHIFT_FAILED    = "Failed to fetch shift"
	MSG_FETCH_HISTORY_FAILED  = "Failed to fetch history"
	MSG_CREATE_SHIFT_FAILED   = "Failed to create shift"
	MSG_UPDATE_SHIFT_FAILED   = "Failed to update shift"
	MSG_DELETE_SHIFT_FAILED   = "Failed to delete shift"
	MSG_DELETE_SHIFTS_FAILED  = "Failed to delete shifts"
	MSG_DELETE_SHIFT_SUCCESS  = "Shift deleted successfully"
	MSG_CONFIRM_SHIFT_FAILED  = "Failed to confirm shift"
	MSG_TIME_CHANGE_FAILED    = "Failed to process time change request"
	MSG_REPORT_PROBLEM_FAILED = "Failed to report problem"
	MSG_ADD_COMMENT_FAILED    = "Failed to add comment"
	MSG_DELETE_COMMENT_FAILED = "Failed to delete comment"
	MSG_ADD_PHOTO_FAILED      = "Failed to add instruction photo"
	MSG_FETCH_PHOTOS_FAILED   = "Failed to fetch instruction photos"
)

type ShiftHandler struct {
	Handler
	shiftController shiftController.ShiftControllerInterface
	loc             *time.Location
}

type answerTimeChangeBody struct {
	Confirmed bool `json:"confirmed"`
}

type reviewTimeChangeBody struct {
	Status models.TimeChangeStatus `json:"status"`
}

type commentBody struct {
	Text string `json:"text"`
}

func NewShiftHandler(app app.App, router fiber.Router) *ShiftHandler {
	return &ShiftHandler{
		Handler:         newHandler(app, router, "shift_handler"),
		shiftController: app.Controllers.Shift,
		loc:             app.Config.Location(),
	}
}

func (h *ShiftHandler) Register() {
	h.router.Get("/history", h.middleware.RequireAuth(), h.history)

	shifts := h.router.Group("/shifts", h.middleware.RequireAuth())
	shifts.Get("/", h.list)
	shifts.Post("/", h.create)
	shifts.Delete("/all", h.deleteAll)
	shifts.Get("/:id", h.get)
	shifts.Patch("/:id", h.update)
	shifts.Delete("/:id", h.delete)

	shifts.Post("/:id/confirm", h.confirmSeen)
	shifts.Post("/:id/time-change", h.requestTimeChange)
	shifts.Post("/:id/time-change/confirm", h.answerTimeChange)
	shifts.Patch("/:id/time-change", h.reviewTimeChange)

	shifts.Post("/:id/problems", h.reportProblem)
	shifts.Post("/:id/comments", h.addComment)
	shifts.Delete("/:id/comments/:commentId", h.deleteComment)
	shifts.Get("/:id/instruction-photos", h.instructionPhotos)
	shifts.Post("/:id/instruction-photos", h.addInstructionPhoto)
}

func (h *ShiftHandler) list(c *fiber.Ctx) error {
	var query shiftController.ListShiftsQuery
	var err error
	if query.Month, err = queryDate(c, "month", h.loc); err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_SHIFTS_FAILED)
	}
	if query.From, err = queryDate(c, "startDate", h.loc); err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_SHIFTS_FAILED)
	}
	if query.To, err = queryDate(c, "endDate", h.loc); err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_SHIFTS_FAILED)
	}
	if query.CleanerID, err = queryUUID(c, "cleanerId"); err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_SHIFTS_FAILED)
	}
	if query.ApartmentID, err = queryUUID(c, "apartmentId"); err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_SHIFTS_FAILED)
	}

	shifts, err := h.shiftController.List(c.UserContext(), middleware.GetUser(c), query)
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_SHIFTS_FAILED)
	}
	return c.JSON(fiber.Map{"shifts": shifts})
}

func (h *ShiftHandler) history(c *fiber.Ctx) error {
	shifts, err := h.shiftController.History(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_HISTORY_FAILED)
	}
	return c.JSON(fiber.Map{"shifts": shifts})
}

func (h *ShiftHandler) create(c *fiber.Ctx) error {
	var request shiftController.CreateShiftRequest
	if err := parseBody(c, &request); err != nil {
		return middleware.RespondError(c, err, MSG_CREATE_SHIFT_FAILED)
	}

	shift, err := h.shiftController.Create(c.UserContext(), middleware.GetUser(c), request)
	if err != nil {
		return middleware.RespondError(c, err, MSG_CREATE_SHIFT_FAILED)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"shift": shift})
}

func (h *ShiftHandler) get(c *fiber.Ctx) error {
	shiftID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_SHIFT_FAILED)
	}

	shift, err := h.shiftController.Get(c.UserContext(), middleware.GetUser(c), shiftID)
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_SHIFT_FAILED)
	}
	return c.JSON(fiber.Map{"shift": shift})
}

func (h *ShiftHandler) update(c *fiber.Ctx) error {
	shiftID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_UPDATE_SHIFT_FAILED)
	}

	var request shiftController.UpdateShiftRequest
	if err := parseBody(c, &request); err != nil {
		return middleware.RespondError(c, err, MSG_UPDATE_SHIFT_FAILED)
	}

	shift, err := h.shiftController.Update(c.UserContext(), middleware.GetUser(c), shiftID, request)
	if err != nil {
		return middleware.RespondError(c, err, MSG_UPDATE_SHIFT_FAILED)
	}
	return c.JSON(fiber.Map{"shift": shift})
}

func (h *ShiftHandler) delete(c *fiber.Ctx) error {
	shiftID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_SHIFT_FAILED)
	}

	if err := h.shiftController.Delete(c.UserContext(), middleware.GetUser(c), shiftID); err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_SHIFT_FAILED)
	}
	return c.JSON(fiber.Map{"message": MSG_DELETE_SHIFT_SUCCESS})
}

func (h *ShiftHandler) deleteAll(c *fiber.Ctx) error {
	deleted, err := h.shiftController.DeleteAll(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_SHIFTS_FAILED)
	}
	return c.JSON(fiber.Map{"deletedCount": deleted})
}

func (h *ShiftHandler) confirmSeen(c *fiber.Ctx) error {
	shiftID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_CONFIRM_SHIFT_FAILED)
	}

	shift, err := h.shiftController.ConfirmSeen(c.UserContext(), middleware.GetUser(c), shiftID)
	if err != nil {
		return middleware.RespondError(c, err, MSG_CONFIRM_SHIFT_FAILED)
	}
	return c.JSON(fiber.Map{"shift": shift})
}

func (h *ShiftHandler) requestTimeChange(c *fiber.Ctx) error {
	shiftID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_TIME_CHANGE_FAILED)
	}

	var request shiftController.TimeChangeRequestBody
	if err := parseBody(c, &request); err != nil {
		return middleware.RespondError(c, err, MSG_TIME_CHANGE_FAILED)
	}

	shift, err := h.shiftController.RequestTimeChange(
		c.UserContext(),
		middleware.GetUser(c),
		shiftID,
		request,
	)
	if err != nil {
		return middleware.RespondError(c, err, MSG_TIME_CHANGE_FAILED)
	}
	return c.JSON(fiber.Map{"shift": shift})
}

func (h *ShiftHandler) answerTimeChange(c *fiber.Ctx) error {
	shiftID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_TIME_CHANGE_FAILED)
	}

	var body answerTimeChangeBody
	if err := parseBody(c, &body); err != nil {
		return middleware.RespondError(c, err, MSG_TIME_CHANGE_FAILED)
	}

	shift, err := h.shiftController.AnswerTimeChange(
		c.UserContext(),
		middleware.GetUser(c),
		shiftID,
		body.Confirmed,
	)
	if err != nil {
		return middleware.RespondError(c, err, MSG_TIME_CHANGE_FAILED)
	}
	return c.JSON(fiber.Map{"shift": shift})
}

func (h *ShiftHandler) reviewTimeChange(c *fiber.Ctx) error {
	shiftID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_TIME_CHANGE_FAILED)
	}

	var body reviewTimeChangeBody
	if err := parseBody(c, &body); err != nil {
		return middleware.RespondError(c, err, MSG_TIME_CHANGE_FAILED)
	}

	shift, err := h.shiftController.ReviewTimeChange(
		c.UserContext(),
		middleware.GetUser(c),
		shiftID,
		body.Status,
	)
	if err != nil {
		return middleware.RespondError(c, err, MSG_TIME_CHANGE_FAILED)
	}
	return c.JSON(fiber.Map{"shift": shift})
}

func (h *ShiftHandler) reportProblem(c *fiber.Ctx) error {
	shiftID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_REPORT_PROBLEM_FAILED)
	}

	var request shiftController.ProblemRequest
	if err := parseBody(c, &request); err != nil {
		return middleware.RespondError(c, err, MSG_REPORT_PROBLEM_FAILED)
	}

	shift, err := h.shiftController.ReportProblem(c.UserContext(), middleware.GetUser(c), shiftID, request)
	if err != nil {
		return middleware.RespondError(c, err, MSG_REPORT_PROBLEM_FAILED)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"shift": shift})
}

func (h *ShiftHandler) addComment(c *fiber.Ctx) error {
	shiftID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_ADD_COMMENT_FAILED)
	}

	var body commentBody
	if err := parseBody(c, &body); err != nil {
		return middleware.RespondError(c, err, MSG_ADD_COMMENT_FAILED)
	}

	shift, err := h.shiftController.AddComment(c.UserContext(), middleware.GetUser(c), shiftID, body.Text)
	if err != nil {
		return middleware.RespondError(c, err, MSG_ADD_COMMENT_FAILED)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"shift": shift})
}

func (h *ShiftHandler) deleteComment(c *fiber.Ctx) error {
	shiftID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_COMMENT_FAILED)
	}
	commentID, err := paramUUID(c, "commentId")
	if err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_COMMENT_FAILED)
	}

	shift, err := h.shiftController.DeleteComment(
		c.UserContext(),
		middleware.GetUser(c),
		shiftID,
		commentID,
	)
	if err != nil {
		return middleware.RespondError(c, err, MSG_DELETE_COMMENT_FAILED)
	}
	return c.JSON(fiber.Map{"shift": shift})
}

func (h *ShiftHandler) instructionPhotos(c *fiber.Ctx) error {
	shiftID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_PHOTOS_FAILED)
	}

	photos, err := h.shiftController.InstructionPhotos(c.UserContext(), middleware.GetUser(c), shiftID)
	if err != nil {
		return middleware.RespondError(c, err, MSG_FETCH_PHOTOS_FAILED)
	}
	return c.JSON(fiber.Map{"photos": photos})
}

func (h *ShiftHandler) addInstructionPhoto(c *fiber.Ctx) error {
	shiftID, err := paramUUID(c, "id")
	if err != nil {
		return middleware.RespondError(c, err, MSG_ADD_PHOTO_FAILED)
	}

	var request shiftController.InstructionPhotoRequest
	if err := parseBody(c, &request); err != nil {
		return middleware.RespondError(c, err, MSG_ADD_PHOTO_FAILED)
	}

	shift, err := h.shiftController.AddInstructionPhoto(
		c.UserContext(),
		middleware.GetUser(c),
		shiftID,
		request,
	)
	if err != nil {
		return middleware.RespondError(c, err, MSG_ADD_PHOTO_FAILED)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"shift": shift})
}
