package shiftController

import (
	"context"
	"errors"
	"time"
	"topup/internal/metrics"
	. "topup/internal/models"
	"topup/internal/policy"
	"topup/internal/repositories"
	"topup/internal/services"
	"topup/internal/types"
	"topup/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MSG_CREATE_FORBIDDEN  = "Forbidden: Only administrators can create shifts"
	MSG_MISSING_FIELDS    = "Missing required fields"
	MSG_CONFIRM_FORBIDDEN = "Forbidden: You can only confirm your own shifts"
	MSG_COMMENT_DELETE    = "Forbidden: Only admins can delete comments"
	MSG_PURGE_FORBIDDEN   = "Forbidden: Only administrators can delete all shifts"
)

type CreateShiftRequest struct {
	ApartmentID        uuid.UUID  `json:"apartmentId"        validate:"required"`
	CleanerID          uuid.UUID  `json:"cleanerId"          validate:"required"`
	ScheduledDate      types.Day  `json:"scheduledDate"`
	ScheduledStartTime time.Time  `json:"scheduledStartTime" validate:"required"`
	ScheduledEndTime   *time.Time `json:"scheduledEndTime,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
	GuestCount         *int       `json:"guestCount,omitempty" validate:"omitempty,min=1"`
}

// ListShiftsQuery narrows a listing. Month selects the calendar month of the
// given day and intersects with From/To when both are present.
type ListShiftsQuery struct {
	Month       *time.Time
	From        *time.Time
	To          *time.Time
	CleanerID   *uuid.UUID
	ApartmentID *uuid.UUID
}

type ShiftController struct {
	db           services.Transactor
	shifts       repositories.ShiftRepository
	apartments   repositories.ApartmentRepository
	users        repositories.UserRepository
	availability *services.AvailabilityService
	notifier     services.Notifier
	loc          *time.Location
	now          func() time.Time
	log          logger.Logger
}

type ShiftControllerInterface interface {
	Create(ctx context.Context, user *User, request CreateShiftRequest) (*CleaningShift, error)
	List(ctx context.Context, user *User, query ListShiftsQuery) ([]*CleaningShift, error)
	History(ctx context.Context, user *User) ([]*CleaningShift, error)
	Get(ctx context.Context, user *User, shiftID uuid.UUID) (*CleaningShift, error)
	Update(ctx context.Context, user *User, shiftID uuid.UUID, request UpdateShiftRequest) (*CleaningShift, error)
	Delete(ctx context.Context, user *User, shiftID uuid.UUID) error
	DeleteAll(ctx context.Context, user *User) (int64, error)
	ConfirmSeen(ctx context.Context, user *User, shiftID uuid.UUID) (*CleaningShift, error)

	RequestTimeChange(
		ctx context.Context,
		user *User,
		shiftID uuid.UUID,
		request TimeChangeRequestBody,
	) (*CleaningShift, error)
	AnswerTimeChange(ctx context.Context, user *User, shiftID uuid.UUID, confirmed bool) (*CleaningShift, error)
	ReviewTimeChange(
		ctx context.Context,
		user *User,
		shiftID uuid.UUID,
		decision TimeChangeStatus,
	) (*CleaningShift, error)

	ReportProblem(ctx context.Context, user *User, shiftID uuid.UUID, request ProblemRequest) (*CleaningShift, error)
	AddComment(ctx context.Context, user *User, shiftID uuid.UUID, text string) (*CleaningShift, error)
	DeleteComment(ctx context.Context, user *User, shiftID, commentID uuid.UUID) (*CleaningShift, error)
	AddInstructionPhoto(
		ctx context.Context,
		user *User,
		shiftID uuid.UUID,
		request InstructionPhotoRequest,
	) (*CleaningShift, error)
	InstructionPhotos(ctx context.Context, user *User, shiftID uuid.UUID) ([]InstructionPhoto, error)
}

func New(repos repositories.Repository, services services.Service) ShiftControllerInterface {
	return &ShiftController{
		db:           services.Transaction,
		shifts:       repos.Shift,
		apartments:   repos.Apartment,
		users:        repos.User,
		availability: services.Availability,
		notifier:     services.Notification,
		loc:          services.Availability.Location(),
		now:          time.Now,
		log:          logger.New("shiftController"),
	}
}

func (sc *ShiftController) Create(
	ctx context.Context,
	user *User,
	request CreateShiftRequest,
) (*CleaningShift, error) {
	log := sc.log.TraceFromContext(ctx).Function("Create")

	if err := policy.RequireRole(user, MSG_CREATE_FORBIDDEN, RoleAdmin); err != nil {
		return nil, err
	}
	if err := services.Validate(request, MSG_MISSING_FIELDS); err != nil {
		return nil, err
	}
	if request.ScheduledDate.IsZero() {
		return nil, types.Validation(MSG_MISSING_FIELDS)
	}

	shift := NewShift(
		request.ApartmentID,
		request.CleanerID,
		user.ID,
		request.ScheduledDate.In(sc.loc),
		request.ScheduledStartTime,
		request.ScheduledEndTime,
		sc.loc,
	)
	shift.Notes = request.Notes
	shift.GuestCount = request.GuestCount
	if err := shift.Slot().Validate(); err != nil {
		return nil, types.Validation(err.Error())
	}

	err := sc.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		apartment, err := sc.apartments.GetByID(ctx, tx, request.ApartmentID)
		if err != nil {
			return err
		}
		cleaner, err := sc.users.GetByID(ctx, tx, request.CleanerID)
		if err != nil {
			return err
		}
		if err := sc.availability.CheckSlot(ctx, tx, shift.Slot(), nil); err != nil {
			return err
		}
		if err := sc.shifts.Create(ctx, tx, shift); err != nil {
			return storeError(err)
		}
		shift.Apartment = apartment
		shift.Cleaner = cleaner
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ShiftCreated()
	log.Info("shift created", "shiftID", shift.ID, "apartmentID", shift.ApartmentID, "cleanerID", shift.CleanerID)

	sc.notifier.Dispatch(ctx, services.ShiftAssignedIntents(services.ShiftRefOf(shift)))
	return shift, nil
}

func (sc *ShiftController) List(
	ctx context.Context,
	user *User,
	query ListShiftsQuery,
) ([]*CleaningShift, error) {
	if err := policy.Authenticated(user); err != nil {
		return nil, err
	}

	filter, err := sc.scopedFilter(ctx, user, query.ApartmentID)
	if err != nil {
		return nil, err
	}
	if query.CleanerID != nil && user.IsAdmin() {
		filter.CleanerID = query.CleanerID
	}
	filter.From, filter.To = sc.window(query)

	return sc.shifts.List(ctx, sc.db.Read(ctx), filter)
}

// History lists completed shifts under the same scoping as List.
func (sc *ShiftController) History(ctx context.Context, user *User) ([]*CleaningShift, error) {
	if err := policy.Authenticated(user); err != nil {
		return nil, err
	}

	filter, err := sc.scopedFilter(ctx, user, nil)
	if err != nil {
		return nil, err
	}
	filter.Statuses = []ShiftStatus{ShiftCompleted}

	return sc.shifts.List(ctx, sc.db.Read(ctx), filter)
}

// scopedFilter applies the role scoping every shift listing shares.
func (sc *ShiftController) scopedFilter(
	ctx context.Context,
	user *User,
	apartmentID *uuid.UUID,
) (repositories.ShiftFilter, error) {
	var filter repositories.ShiftFilter
	tx := sc.db.Read(ctx)

	switch user.Role {
	case RoleAdmin, RoleViewer:
		filter.ApartmentID = apartmentID
	case RoleOperator:
		if apartmentID != nil {
			return filter, types.Forbidden("")
		}
		filter.CleanerID = &user.ID
	case RoleOwner:
		if apartmentID != nil {
			apartment, err := sc.apartments.GetByID(ctx, tx, *apartmentID)
			if err != nil && types.KindOf(err) != types.KindNotFound {
				return filter, err
			}
			if !policy.OwnsApartment(user, apartment) {
				return filter, types.Forbidden("")
			}
			filter.ApartmentID = apartmentID
			return filter, nil
		}
		ids, err := sc.apartments.IDsByOwner(ctx, tx, user.ID)
		if err != nil {
			return filter, err
		}
		filter.ApartmentIDs = ids
		filter.Restricted = true
	default:
		return filter, types.Forbidden("")
	}

	return filter, nil
}

func (sc *ShiftController) window(query ListShiftsQuery) (*time.Time, *time.Time) {
	var from, to *time.Time
	if query.From != nil {
		start := utils.DayStart(*query.From, sc.loc)
		from = &start
	}
	if query.To != nil {
		_, end := utils.DayRange(*query.To, sc.loc)
		to = &end
	}
	if query.Month == nil {
		return from, to
	}

	monthStart, monthEnd := utils.MonthRange(*query.Month, sc.loc)
	if from == nil || from.Before(monthStart) {
		from = &monthStart
	}
	if to == nil || to.After(monthEnd) {
		to = &monthEnd
	}
	return from, to
}

func (sc *ShiftController) Get(ctx context.Context, user *User, shiftID uuid.UUID) (*CleaningShift, error) {
	if err := policy.Authenticated(user); err != nil {
		return nil, err
	}

	shift, err := sc.shifts.GetByID(ctx, sc.db.Read(ctx), shiftID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewShift(user, shift) {
		return nil, types.Forbidden("")
	}
	return shift, nil
}

func (sc *ShiftController) Delete(ctx context.Context, user *User, shiftID uuid.UUID) error {
	log := sc.log.TraceFromContext(ctx).Function("Delete")

	if err := policy.Authenticated(user); err != nil {
		return err
	}

	var shift *CleaningShift
	err := sc.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		if shift, err = sc.shifts.GetByID(ctx, tx, shiftID); err != nil {
			return err
		}
		if err := policy.CanDeleteShift(user, shift); err != nil {
			return err
		}
		return sc.shifts.Delete(ctx, tx, shiftID)
	})
	if err != nil {
		return err
	}

	log.Info("shift deleted", "shiftID", shiftID, "deletedBy", user.ID)
	sc.notifier.Dispatch(ctx, services.ShiftDeletedIntents(services.ShiftRefOf(shift)))
	return nil
}

// DeleteAll removes every shift. Admin only.
func (sc *ShiftController) DeleteAll(ctx context.Context, user *User) (int64, error) {
	log := sc.log.TraceFromContext(ctx).Function("DeleteAll")

	if err := policy.RequireRole(user, MSG_PURGE_FORBIDDEN, RoleAdmin); err != nil {
		return 0, err
	}

	var deleted int64
	err := sc.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		deleted, err = sc.shifts.DeleteAll(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}

	log.Info("all shifts deleted", "count", deleted, "deletedBy", user.ID)
	return deleted, nil
}

// ConfirmSeen records the assignee's acknowledgement. Confirming again is a
// no-op that still succeeds.
func (sc *ShiftController) ConfirmSeen(
	ctx context.Context,
	user *User,
	shiftID uuid.UUID,
) (*CleaningShift, error) {
	if err := policy.RequireRole(user, "", RoleOperator); err != nil {
		return nil, err
	}

	alreadyConfirmed := false
	shift, err := sc.mutate(ctx, shiftID, func(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error {
		if !shift.IsAssignedTo(user.ID) {
			return types.Forbidden(MSG_CONFIRM_FORBIDDEN)
		}
		alreadyConfirmed = shift.Confirmation().Confirmed
		shift.ConfirmSeen(sc.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyConfirmed {
		ref := services.ShiftRefOf(shift)
		sc.notifier.Dispatch(ctx, services.ShiftConfirmedIntents(ref, user, sc.notifier.Admins(ctx)))
	}
	return shift, nil
}

// mutate loads a shift, applies fn and saves the result in one transaction.
func (sc *ShiftController) mutate(
	ctx context.Context,
	shiftID uuid.UUID,
	fn func(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error,
) (*CleaningShift, error) {
	var shift *CleaningShift
	err := sc.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		if shift, err = sc.shifts.GetByID(ctx, tx, shiftID); err != nil {
			return err
		}
		if err := fn(ctx, tx, shift); err != nil {
			return err
		}
		if err := sc.shifts.Save(ctx, tx, shift); err != nil {
			return storeError(err)
		}
		return sc.refreshApartment(ctx, tx, shift)
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

// refreshApartment keeps the preloaded apartment in step after a move.
func (sc *ShiftController) refreshApartment(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error {
	if shift.Apartment != nil && shift.Apartment.ID == shift.ApartmentID {
		return nil
	}
	apartment, err := sc.apartments.GetByID(ctx, tx, shift.ApartmentID)
	if err != nil {
		return err
	}
	shift.Apartment = apartment
	return nil
}

// storeError turns a unique index violation on the apartment/day index into
// the same message the availability check gives.
func storeError(err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		metrics.AvailabilityConflict(services.CONFLICT_APARTMENT)
		return types.Validation(services.MSG_APARTMENT_BOOKED)
	}
	return err
}

// invalid surfaces an aggregate rule violation as a validation error.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return types.Validation(err.Error())
}
