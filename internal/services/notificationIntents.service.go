package services

import (
	"fmt"
	"strings"
	"time"
	"topup/internal/models"

	"github.com/google/uuid"
)

const (
	COMMENT_PREVIEW_LENGTH = 100
	FALLBACK_APARTMENT     = "the apartment"
)

// Intent is one notification to be delivered to one user.
type Intent struct {
	RecipientID    uuid.UUID
	Type           models.NotificationType
	Title          string
	Message        string
	RelatedShiftID *uuid.UUID
}

// ShiftRef is the slice of a shift the notification texts need.
type ShiftRef struct {
	ID            uuid.UUID
	ApartmentName string
	OwnerID       *uuid.UUID
	CleanerID     uuid.UUID
}

func ShiftRefOf(shift *models.CleaningShift) ShiftRef {
	ref := ShiftRef{
		ID:            shift.ID,
		ApartmentName: FALLBACK_APARTMENT,
		CleanerID:     shift.CleanerID,
	}
	if shift.Apartment != nil {
		if name := strings.TrimSpace(shift.Apartment.Name); name != "" {
			ref.ApartmentName = name
		}
		if shift.Apartment.OwnerID != uuid.Nil {
			owner := shift.Apartment.OwnerID
			ref.OwnerID = &owner
		}
	}
	return ref
}

func (r ShiftRef) ownerAnd(admins []uuid.UUID) []uuid.UUID {
	if r.OwnerID == nil {
		return admins
	}
	return append([]uuid.UUID{*r.OwnerID}, admins...)
}

// fanOut builds one intent per distinct recipient.
func fanOut(
	recipients []uuid.UUID,
	kind models.NotificationType,
	title, message string,
	shiftID *uuid.UUID,
) []Intent {
	seen := make(map[uuid.UUID]bool, len(recipients))
	intents := make([]Intent, 0, len(recipients))
	for _, id := range recipients {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		intents = append(intents, Intent{
			RecipientID:    id,
			Type:           kind,
			Title:          title,
			Message:        message,
			RelatedShiftID: shiftID,
		})
	}
	return intents
}

func (r ShiftRef) to(recipients []uuid.UUID, kind models.NotificationType, title, message string) []Intent {
	id := r.ID
	return fanOut(recipients, kind, title, message, &id)
}

func ShiftAssignedIntents(ref ShiftRef) []Intent {
	return ref.to(
		[]uuid.UUID{ref.CleanerID},
		models.NotificationShiftAssigned,
		"TOP UP",
		"You have been assigned a new cleaning shift.",
	)
}

func ShiftConfirmedIntents(ref ShiftRef, operator *models.User, admins []uuid.UUID) []Intent {
	return ref.to(
		ref.ownerAnd(admins),
		models.NotificationShiftConfirmed,
		"Shift Confirmed",
		fmt.Sprintf("%s has confirmed the shift for %s.", operator.DisplayName("The operator"), ref.ApartmentName),
	)
}

// TimeChangeRequestedIntents depends on who asked: an operator's request goes
// to the owner and admins, an admin or owner proposal goes to the operator who
// would hold the shift afterwards.
func TimeChangeRequestedIntents(
	ref ShiftRef,
	req *models.TimeChangeRequest,
	requester *models.User,
	admins []uuid.UUID,
) []Intent {
	if requester.Role == models.RoleOperator {
		return ref.to(
			ref.ownerAnd(admins),
			models.NotificationTimeChangeRequest,
			"Time Change Request",
			fmt.Sprintf(
				"Operator %s has requested a time change for %s.",
				requester.DisplayName("Someone"),
				ref.ApartmentName,
			),
		)
	}

	cleaner := ref.CleanerID
	if req.NewCleanerID != nil {
		cleaner = *req.NewCleanerID
	}
	return ref.to(
		[]uuid.UUID{cleaner},
		models.NotificationTimeChangeRequestedByAdmin,
		"Shift Edit Requested",
		fmt.Sprintf(
			"%s has requested to change the %s for %s. Please confirm.",
			requester.DisplayName("Someone"),
			strings.Join(req.ChangedFields(), ", "),
			ref.ApartmentName,
		),
	)
}

func TimeChangeAnsweredIntents(
	ref ShiftRef,
	operator *models.User,
	confirmed bool,
	admins []uuid.UUID,
) []Intent {
	name := operator.DisplayName("The operator")
	if confirmed {
		return ref.to(
			ref.ownerAnd(admins),
			models.NotificationTimeChangeConfirmedByOperator,
			"Time Change Confirmed by Operator",
			fmt.Sprintf("%s has confirmed the time change for %s.", name, ref.ApartmentName),
		)
	}
	return ref.to(
		ref.ownerAnd(admins),
		models.NotificationTimeChangeRejected,
		"Time Change Rejected by Operator",
		fmt.Sprintf("%s has rejected the time change request for %s.", name, ref.ApartmentName),
	)
}

// TimeChangeReviewedIntents tells the shift's operator how the owner decided.
func TimeChangeReviewedIntents(ref ShiftRef, approved bool) []Intent {
	kind, word, status := models.NotificationTimeChangeRejected, "Rejected", "rejected"
	if approved {
		kind, word, status = models.NotificationTimeChangeApproved, "Approved", "approved"
	}
	return ref.to(
		[]uuid.UUID{ref.CleanerID},
		kind,
		"Time Change "+word,
		fmt.Sprintf("Your time change request has been %s.", status),
	)
}

func ProblemReportedIntents(ref ShiftRef, problem models.Problem, admins []uuid.UUID) []Intent {
	photoText := ""
	if n := len(problem.Photos); n > 0 {
		photoText = fmt.Sprintf(" with %d photo%s", n, plural(n, "", "s"))
	}
	return ref.to(
		ref.ownerAnd(admins),
		models.NotificationProblemReported,
		"Problem Reported",
		fmt.Sprintf("A problem has been reported: %s%s", problem.Description, photoText),
	)
}

// CommentAddedIntents routes an operator's comment to the owner and anyone
// else's comment to the operator.
func CommentAddedIntents(ref ShiftRef, author *models.User, comment models.Comment) []Intent {
	preview := comment.Text
	if runes := []rune(preview); len(runes) > COMMENT_PREVIEW_LENGTH {
		preview = string(runes[:COMMENT_PREVIEW_LENGTH]) + "..."
	}

	var recipients []uuid.UUID
	var fallback string
	switch author.Role {
	case models.RoleOperator:
		if ref.OwnerID != nil {
			recipients = []uuid.UUID{*ref.OwnerID}
		}
		fallback = "Operator"
	case models.RoleAdmin, models.RoleOwner:
		recipients = []uuid.UUID{ref.CleanerID}
		fallback = "Admin/Owner"
	}

	return ref.to(
		recipients,
		models.NotificationShiftAssigned,
		"TOP UP - Comment Added",
		fmt.Sprintf("%s: %s", author.DisplayName(fallback), preview),
	)
}

func InstructionPhotoIntents(ref ShiftRef, photo models.InstructionPhoto) []Intent {
	suffix := ""
	if photo.Description != nil && *photo.Description != "" {
		suffix = ": " + *photo.Description
	}
	return ref.to(
		[]uuid.UUID{ref.CleanerID},
		models.NotificationInstructionPhotoAdded,
		"New Instruction Photo",
		"A new instruction photo has been added for your shift"+suffix,
	)
}

func GuestCountUpdatedIntents(ref ShiftRef, guestCount int) []Intent {
	return ref.to(
		[]uuid.UUID{ref.CleanerID},
		models.NotificationShiftTimeChanged,
		"Guest Count Updated",
		fmt.Sprintf("Guest count for %s has been updated to %d", ref.ApartmentName, guestCount),
	)
}

// ShiftReassignedIntents warns the previous operator and greets the new one.
func ShiftReassignedIntents(ref ShiftRef, previous uuid.UUID) []Intent {
	intents := ref.to(
		[]uuid.UUID{previous},
		models.NotificationShiftAssigned,
		"Shift Reassigned",
		fmt.Sprintf("The shift at %s has been reassigned to another operator.", ref.ApartmentName),
	)
	return append(intents, ref.to(
		[]uuid.UUID{ref.CleanerID},
		models.NotificationShiftAssigned,
		"New Shift Assigned",
		fmt.Sprintf("You have been assigned a new shift at %s.", ref.ApartmentName),
	)...)
}

func ShiftTimeChangedIntents(ref ShiftRef) []Intent {
	return ref.to(
		[]uuid.UUID{ref.CleanerID},
		models.NotificationShiftTimeChanged,
		"Shift Time Changed",
		fmt.Sprintf(
			"The scheduled time for %s has been changed by admin. Please check the new time.",
			ref.ApartmentName,
		),
	)
}

func ShiftDeletedIntents(ref ShiftRef) []Intent {
	return fanOut(
		[]uuid.UUID{ref.CleanerID},
		models.NotificationShiftDeleted,
		"Shift Deleted",
		fmt.Sprintf("The shift for %s has been deleted.", ref.ApartmentName),
		nil,
	)
}

func UnavailabilityRequestedIntents(operator *models.User, dateCount int, admins []uuid.UUID) []Intent {
	return fanOut(
		admins,
		models.NotificationUnavailabilityRequest,
		"Unavailability Request",
		fmt.Sprintf(
			"%s has requested to be unavailable for %d %s.",
			operator.DisplayName("An operator"),
			dateCount,
			plural(dateCount, "day", "days"),
		),
		nil,
	)
}

func UnavailabilityReviewedIntents(
	operatorID uuid.UUID,
	dateCount int,
	status models.UnavailabilityStatus,
) []Intent {
	word := "Rejected"
	if status == models.UnavailabilityApproved {
		word = "Approved"
	}
	return fanOut(
		[]uuid.UUID{operatorID},
		models.NotificationUnavailabilityRequestReviewed,
		"Unavailability Request "+word,
		fmt.Sprintf(
			"Your request to be unavailable for %d %s has been %s.",
			dateCount,
			plural(dateCount, "day", "days"),
			strings.ToLower(word),
		),
		nil,
	)
}

// NewBookingsIntents lists an owner's bookings for the month to every admin.
func NewBookingsIntents(
	owner *models.User,
	apartmentName string,
	year, month int,
	bookings []models.Booking,
	admins []uuid.UUID,
	loc *time.Location,
) []Intent {
	if len(bookings) == 0 {
		return nil
	}

	entries := make([]string, 0, len(bookings))
	for _, b := range bookings {
		entries = append(entries, fmt.Sprintf(
			"%s - %s (%d %s)",
			b.CheckIn.In(loc).Format("Jan 2"),
			b.CheckOut.In(loc).Format("Jan 2"),
			b.GuestCount,
			plural(b.GuestCount, "guest", "guests"),
		))
	}

	return fanOut(
		admins,
		models.NotificationCalendarUpdatedNewDays,
		"New Bookings Added",
		fmt.Sprintf(
			"%s added new bookings for %s: %s in %s %d",
			owner.DisplayName("Owner"),
			apartmentName,
			strings.Join(entries, ", "),
			time.Month(month).String(),
			year,
		),
		nil,
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
