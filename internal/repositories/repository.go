package repositories

import (
	"errors"

	"topup/internal/database"
	"topup/internal/types"

	"gorm.io/gorm"
)

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = errors.New("duplicate record")

type Repository struct {
	User           UserRepository
	Apartment      ApartmentRepository
	Shift          ShiftRepository
	Schedule       ScheduleRepository
	Notification   NotificationRepository
	Unavailability UnavailabilityRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:           NewUserRepository(db.Cache.User, db.Cache.General),
		Apartment:      NewApartmentRepository(),
		Shift:          NewShiftRepository(),
		Schedule:       NewScheduleRepository(),
		Notification:   NewNotificationRepository(),
		Unavailability: NewUnavailabilityRepository(),
	}
}

// classify maps store errors the callers branch on; anything else is
// returned untouched for logging.
func classify(err error, notFoundMessage string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return types.NotFound(notFoundMessage)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func isClassified(err error) bool {
	return errors.Is(err, ErrDuplicate) || types.KindOf(err) == types.KindNotFound
}
