package shiftController

import (
	"context"
	"time"
	. "topup/internal/models"
	"topup/internal/policy"
	"topup/internal/services"
	"topup/internal/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DIRECT_SLOT_EDIT_CUTOFF     = 18 * time.Hour
	DIRECT_OPERATOR_EDIT_CUTOFF = 10 * time.Hour
	MIN_CLEANING_DURATION       = time.Hour

	MSG_OWNER_EDIT_FORBIDDEN   = "Forbidden: You can only edit shifts for your own apartments"
	MSG_OWNER_EDIT_FIELDS      = "Forbidden: Owners can only edit guest count. Date, time, operator, and apartment cannot be changed."
	MSG_SHIFT_STARTED          = "Cannot edit shift. The shift has already started."
	MSG_ANOTHER_IN_PROGRESS    = "You cannot start a new cleaning shift while another shift is already in progress. Please complete the current shift first."
	MSG_START_TOO_EARLY        = "Cannot start shift before the scheduled time"
	MSG_COMPLETE_NOT_STARTED   = "Cannot complete shift without starting it first"
	MSG_COMPLETE_TOO_SOON      = "Cannot mark shift as completed in less than 1 hour. Minimum duration is 1 hour."
	MSG_SLOT_EDIT_TOO_LATE     = "Cannot edit date/time directly. Less than 18 hours remaining before shift starts. Please use the request system."
	MSG_OPERATOR_EDIT_TOO_LATE = "Cannot change operator directly. Less than 10 hours remaining before shift starts. Please use the request system."
	MSG_INVALID_GUEST_COUNT    = "Guest count must be at least 1"
)

// UpdateShiftRequest is a partial edit. Which fields a caller may send
// depends on their role; ScheduledEndTime sent as null clears the end.
type UpdateShiftRequest struct {
	ApartmentID        *uuid.UUID         `json:"apartment,omitempty"`
	CleanerID          *uuid.UUID         `json:"cleaner,omitempty"`
	ScheduledDate      *types.Day         `json:"scheduledDate,omitempty"`
	ScheduledStartTime *time.Time         `json:"scheduledStartTime,omitempty"`
	ScheduledEndTime   types.OptionalTime `json:"scheduledEndTime"`
	ActualStartTime    *time.Time         `json:"actualStartTime,omitempty"`
	ActualEndTime      *time.Time         `json:"actualEndTime,omitempty"`
	Status             *ShiftStatus       `json:"status,omitempty"`
	Notes              *string            `json:"notes,omitempty"`
	GuestCount         *int               `json:"guestCount,omitempty"`
}

func (r UpdateShiftRequest) touchesSlot() bool {
	return r.ApartmentID != nil || r.CleanerID != nil || r.touchesSchedule()
}

func (r UpdateShiftRequest) touchesSchedule() bool {
	return r.ApartmentID != nil ||
		r.ScheduledDate != nil ||
		r.ScheduledStartTime != nil ||
		r.ScheduledEndTime.Set
}

// slot is where the shift lands once the edit is applied.
func (r UpdateShiftRequest) slot(shift *CleaningShift, loc *time.Location) ShiftSlot {
	slot := shift.Slot()
	if r.ApartmentID != nil {
		slot.ApartmentID = *r.ApartmentID
	}
	if r.CleanerID != nil {
		slot.CleanerID = *r.CleanerID
	}
	if r.ScheduledDate != nil {
		slot.Date = r.ScheduledDate.In(loc)
	}
	if r.ScheduledStartTime != nil {
		slot.Start = *r.ScheduledStartTime
	}
	if r.ScheduledEndTime.Set {
		slot.End = r.ScheduledEndTime.Value
	}
	return slot
}

// Update applies a role-dependent partial edit. Owners adjust guest count
// and notes before the shift starts, the assignee records progress, and
// admins may move the shift outright within the direct-edit windows.
func (sc *ShiftController) Update(
	ctx context.Context,
	user *User,
	shiftID uuid.UUID,
	request UpdateShiftRequest,
) (*CleaningShift, error) {
	if err := policy.Authenticated(user); err != nil {
		return nil, err
	}

	var intents func(shift *CleaningShift) []services.Intent
	shift, err := sc.mutate(ctx, shiftID, func(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error {
		var err error
		switch user.Role {
		case RoleOwner:
			intents, err = sc.ownerEdit(user, shift, request)
		case RoleOperator:
			intents, err = sc.operatorEdit(ctx, tx, user, shift, request)
		case RoleAdmin:
			intents, err = sc.adminEdit(ctx, tx, shift, request)
		default:
			err = types.Forbidden("")
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if intents != nil {
		sc.notifier.Dispatch(ctx, intents(shift))
	}
	return shift, nil
}

func (sc *ShiftController) ownerEdit(
	user *User,
	shift *CleaningShift,
	request UpdateShiftRequest,
) (func(*CleaningShift) []services.Intent, error) {
	if !policy.OwnsApartment(user, shift.Apartment) {
		return nil, types.Forbidden(MSG_OWNER_EDIT_FORBIDDEN)
	}
	if !sc.now().Before(shift.ScheduledStartTime) {
		return nil, types.Validation(MSG_SHIFT_STARTED)
	}
	if request.touchesSlot() || request.ActualStartTime != nil || request.ActualEndTime != nil ||
		request.Status != nil {
		return nil, types.Forbidden(MSG_OWNER_EDIT_FIELDS)
	}

	if request.Notes != nil {
		shift.Notes = request.Notes
	}
	if request.GuestCount == nil {
		return nil, nil
	}
	if *request.GuestCount < 1 {
		return nil, types.Validation(MSG_INVALID_GUEST_COUNT)
	}

	guests := *request.GuestCount
	shift.GuestCount = &guests
	return func(shift *CleaningShift) []services.Intent {
		return services.GuestCountUpdatedIntents(services.ShiftRefOf(shift), guests)
	}, nil
}

func (sc *ShiftController) operatorEdit(
	ctx context.Context,
	tx *gorm.DB,
	user *User,
	shift *CleaningShift,
	request UpdateShiftRequest,
) (func(*CleaningShift) []services.Intent, error) {
	if !shift.IsAssignedTo(user.ID) || request.touchesSlot() || request.GuestCount != nil {
		return nil, types.Forbidden("")
	}

	if request.ActualStartTime != nil {
		if err := sc.startShift(ctx, tx, user, shift, *request.ActualStartTime); err != nil {
			return nil, err
		}
	}
	if request.ActualEndTime != nil {
		if err := completeShift(shift, *request.ActualEndTime); err != nil {
			return nil, err
		}
	}
	if request.Status != nil {
		if *request.Status == ShiftCancelled {
			return nil, types.Forbidden("")
		}
		if err := shift.TransitionTo(*request.Status); err != nil {
			return nil, invalid(err)
		}
	}
	if request.Notes != nil {
		shift.Notes = request.Notes
	}
	return nil, nil
}

func (sc *ShiftController) startShift(
	ctx context.Context,
	tx *gorm.DB,
	user *User,
	shift *CleaningShift,
	startedAt time.Time,
) error {
	running, err := sc.shifts.InProgressForCleaner(ctx, tx, user.ID)
	if err != nil {
		return err
	}
	for _, other := range running {
		if other.ID != shift.ID {
			return types.Validation(MSG_ANOTHER_IN_PROGRESS)
		}
	}
	if startedAt.Before(shift.ScheduledStartTime) {
		return types.Validation(MSG_START_TOO_EARLY)
	}

	shift.ActualStartTime = &startedAt
	if shift.Status == ShiftScheduled {
		return invalid(shift.TransitionTo(ShiftInProgress))
	}
	return nil
}

func completeShift(shift *CleaningShift, endedAt time.Time) error {
	if shift.ActualStartTime == nil {
		return types.Validation(MSG_COMPLETE_NOT_STARTED)
	}
	if endedAt.Sub(*shift.ActualStartTime) < MIN_CLEANING_DURATION {
		return types.Validation(MSG_COMPLETE_TOO_SOON)
	}

	shift.ActualEndTime = &endedAt
	if shift.Status == ShiftInProgress {
		return invalid(shift.TransitionTo(ShiftCompleted))
	}
	return nil
}

func (sc *ShiftController) adminEdit(
	ctx context.Context,
	tx *gorm.DB,
	shift *CleaningShift,
	request UpdateShiftRequest,
) (func(*CleaningShift) []services.Intent, error) {
	untilStart := shift.ScheduledStartTime.Sub(sc.now())
	previousCleaner := shift.CleanerID
	reassigned := request.CleanerID != nil && *request.CleanerID != previousCleaner
	rescheduled := request.touchesSchedule()

	if rescheduled && untilStart < DIRECT_SLOT_EDIT_CUTOFF {
		return nil, types.Validation(MSG_SLOT_EDIT_TOO_LATE)
	}
	if reassigned && !rescheduled && untilStart < DIRECT_OPERATOR_EDIT_CUTOFF {
		return nil, types.Validation(MSG_OPERATOR_EDIT_TOO_LATE)
	}

	if reassigned || rescheduled {
		slot := request.slot(shift, sc.loc)
		if err := shift.Reschedule(slot, sc.loc); err != nil {
			return nil, invalid(err)
		}
		if err := sc.availability.CheckSlot(ctx, tx, shift.Slot(), &shift.ID); err != nil {
			return nil, err
		}
	}

	if request.Status != nil {
		if err := shift.TransitionTo(*request.Status); err != nil {
			return nil, invalid(err)
		}
	}
	if request.ActualStartTime != nil {
		shift.ActualStartTime = request.ActualStartTime
	}
	if request.ActualEndTime != nil {
		shift.ActualEndTime = request.ActualEndTime
	}
	if request.Notes != nil {
		shift.Notes = request.Notes
	}
	if request.GuestCount != nil {
		if *request.GuestCount < 1 {
			return nil, types.Validation(MSG_INVALID_GUEST_COUNT)
		}
		shift.GuestCount = request.GuestCount
	}

	switch {
	case reassigned:
		return func(shift *CleaningShift) []services.Intent {
			return services.ShiftReassignedIntents(services.ShiftRefOf(shift), previousCleaner)
		}, nil
	case rescheduled:
		return func(shift *CleaningShift) []services.Intent {
			return services.ShiftTimeChangedIntents(services.ShiftRefOf(shift))
		}, nil
	}
	return nil, nil
}
