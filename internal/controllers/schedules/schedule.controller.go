package scheduleController

import (
	"context"
	"slices"
	"time"
	. "topup/internal/models"
	"topup/internal/policy"
	"topup/internal/repositories"
	"topup/internal/services"
	"topup/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MSG_MISSING_FIELDS   = "Missing required fields"
	MSG_MISSING_BOOKINGS = "Missing bookings, days, or scheduledDays array"
	MSG_INVALID_MONTH    = "Invalid month"
	MSG_MANAGE_FORBIDDEN = "Only owners and admins can manage cleaning schedules"
	MSG_MANAGE_OWN       = "Forbidden: You can only manage schedules for your own apartments"
	MSG_DELETE_FORBIDDEN = "Forbidden: Only administrators can delete cleaning schedules"
)

// ScheduleRequest replaces the bookings of one apartment month. Nil Bookings
// means the caller sent none; an empty slice clears the month.
type ScheduleRequest struct {
	ApartmentID uuid.UUID
	Year        int
	Month       int
	Bookings    []Booking
	NotifyAdmin bool
}

type ListQuery struct {
	ApartmentID *uuid.UUID
	Year        *int
	Month       *int
}

type ScheduleController struct {
	db         services.Transactor
	schedules  repositories.ScheduleRepository
	apartments repositories.ApartmentRepository
	notifier   services.Notifier
	loc        *time.Location
	log        logger.Logger
}

type ScheduleControllerInterface interface {
	List(ctx context.Context, user *User, query ListQuery) ([]*CleaningSchedule, error)
	Save(ctx context.Context, user *User, request ScheduleRequest) (*CleaningSchedule, error)
	DeleteForApartment(ctx context.Context, user *User, apartmentID uuid.UUID) error
}

func New(repos repositories.Repository, services services.Service) ScheduleControllerInterface {
	return &ScheduleController{
		db:         services.Transaction,
		schedules:  repos.Schedule,
		apartments: repos.Apartment,
		notifier:   services.Notification,
		loc:        services.Availability.Location(),
		log:        logger.New("scheduleController"),
	}
}

// List scopes owners to their own apartments. An owner asking for someone
// else's apartment gets an empty list rather than an error.
func (sc *ScheduleController) List(
	ctx context.Context,
	user *User,
	query ListQuery,
) ([]*CleaningSchedule, error) {
	if err := policy.RequireRole(user, "", RoleAdmin, RoleOwner, RoleOperator, RoleViewer); err != nil {
		return nil, err
	}

	tx := sc.db.Read(ctx)
	filter := repositories.ScheduleFilter{Year: query.Year, Month: query.Month}
	if query.ApartmentID != nil {
		filter.ApartmentIDs = []uuid.UUID{*query.ApartmentID}
	}

	if user.Role == RoleOwner {
		owned, err := sc.apartments.IDsByOwner(ctx, tx, user.ID)
		if err != nil {
			return nil, err
		}
		filter.Restricted = true
		switch {
		case query.ApartmentID == nil:
			filter.ApartmentIDs = owned
		case !slices.Contains(owned, *query.ApartmentID):
			filter.ApartmentIDs = nil
		}
	}

	return sc.schedules.List(ctx, tx, filter)
}

// Save replaces the bookings for one apartment month. It returns nil when the
// bookings are empty and the month was deleted.
func (sc *ScheduleController) Save(
	ctx context.Context,
	user *User,
	request ScheduleRequest,
) (*CleaningSchedule, error) {
	log := sc.log.TraceFromContext(ctx).Function("Save")

	if err := policy.RequireRole(user, MSG_MANAGE_FORBIDDEN, RoleAdmin, RoleOwner); err != nil {
		return nil, err
	}
	if request.ApartmentID == uuid.Nil || request.Year == 0 || request.Month == 0 {
		return nil, types.Validation(MSG_MISSING_FIELDS)
	}
	if !ValidMonth(request.Month) {
		return nil, types.Validation(MSG_INVALID_MONTH)
	}
	if request.Bookings == nil {
		return nil, types.Validation(MSG_MISSING_BOOKINGS)
	}
	bookings := request.Bookings

	var apartment *Apartment
	var schedule *CleaningSchedule
	err := sc.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		apartment, err = sc.apartments.GetByID(ctx, tx, request.ApartmentID)
		if err != nil {
			return err
		}
		if !policy.ManagesApartment(user, apartment) {
			return types.Forbidden(MSG_MANAGE_OWN)
		}

		if len(bookings) == 0 {
			return sc.schedules.Delete(ctx, tx, apartment.ID, request.Year, request.Month)
		}

		schedule = &CleaningSchedule{
			ApartmentID: apartment.ID,
			Year:        request.Year,
			Month:       request.Month,
			Bookings:    bookings,
		}
		if err := sc.schedules.Upsert(ctx, tx, schedule); err != nil {
			return err
		}
		schedule, err = sc.schedules.Get(ctx, tx, apartment.ID, request.Year, request.Month)
		return err
	})
	if err != nil {
		return nil, err
	}

	if schedule == nil {
		log.Info("schedule cleared", "apartmentID", apartment.ID, "year", request.Year, "month", request.Month)
		return nil, nil
	}
	schedule.Apartment = apartment

	if request.NotifyAdmin && user.Role == RoleOwner {
		sc.notifier.Dispatch(ctx, services.NewBookingsIntents(
			user,
			apartment.Name,
			request.Year,
			request.Month,
			bookings,
			sc.notifier.Admins(ctx),
			sc.loc,
		))
	}

	return schedule, nil
}

func (sc *ScheduleController) DeleteForApartment(
	ctx context.Context,
	user *User,
	apartmentID uuid.UUID,
) error {
	log := sc.log.TraceFromContext(ctx).Function("DeleteForApartment")

	if err := policy.RequireRole(user, MSG_DELETE_FORBIDDEN, RoleAdmin); err != nil {
		return err
	}

	err := sc.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return sc.schedules.DeleteByApartments(ctx, tx, []uuid.UUID{apartmentID})
	})
	if err != nil {
		return err
	}

	log.Info("schedules deleted", "apartmentID", apartmentID, "userID", user.ID)
	return nil
}
