package services

import (
	"context"
	"time"
	"topup/internal/metrics"
	"topup/internal/models"
	"topup/internal/repositories"
	"topup/internal/types"
	"topup/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MAX_SHIFTS_PER_OPERATOR_DAY = 3
	MIN_SHIFT_GAP               = 90 * time.Minute
)

const (
	MSG_APARTMENT_BOOKED   = "apartment already booked this date"
	MSG_OPERATOR_FULL      = "operator already has 3 shifts this date"
	MSG_OPERATOR_GAP       = "shifts must be at least 90 minutes apart"
	CONFLICT_APARTMENT     = "apartment"
	CONFLICT_OPERATOR_FULL = "operator_cap"
	CONFLICT_OPERATOR_GAP  = "operator_gap"
)

type Conflict struct {
	Kind    string
	Message string
}

func (c *Conflict) Error() string {
	return c.Message
}

// ShiftFinder is the read side the availability checker needs.
type ShiftFinder interface {
	ActiveForApartment(
		ctx context.Context,
		tx *gorm.DB,
		apartmentID uuid.UUID,
		day repositories.DayQuery,
	) ([]*models.CleaningShift, error)
	ActiveForCleaner(
		ctx context.Context,
		tx *gorm.DB,
		cleanerID uuid.UUID,
		day repositories.DayQuery,
	) ([]*models.CleaningShift, error)
}

// ApartmentConflict reports a conflict when any non-cancelled shift already
// occupies the apartment's day.
func ApartmentConflict(existing []*models.CleaningShift) *Conflict {
	for _, shift := range existing {
		if !shift.IsCancelled() {
			return &Conflict{Kind: CONFLICT_APARTMENT, Message: MSG_APARTMENT_BOOKED}
		}
	}
	return nil
}

// OperatorConflict applies the daily cap and the 90 minute buffer to a
// proposed window against the operator's other shifts that day.
func OperatorConflict(existing []*models.CleaningShift, start, end time.Time) *Conflict {
	active := make([]*models.CleaningShift, 0, len(existing))
	for _, shift := range existing {
		if !shift.IsCancelled() {
			active = append(active, shift)
		}
	}

	if len(active) >= MAX_SHIFTS_PER_OPERATOR_DAY {
		return &Conflict{Kind: CONFLICT_OPERATOR_FULL, Message: MSG_OPERATOR_FULL}
	}

	for _, shift := range active {
		existingStart := shift.ScheduledStartTime
		existingEnd := shift.EffectiveEnd()

		gapBefore := start.Sub(existingEnd)
		gapAfter := existingStart.Sub(end)
		overlaps := start.Before(existingEnd) && existingStart.Before(end)

		if abs(gapBefore) < MIN_SHIFT_GAP || abs(gapAfter) < MIN_SHIFT_GAP || overlaps {
			return &Conflict{Kind: CONFLICT_OPERATOR_GAP, Message: MSG_OPERATOR_GAP}
		}
	}

	return nil
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

type AvailabilityService struct {
	shifts ShiftFinder
	loc    *time.Location
	log    logger.Logger
}

func NewAvailabilityService(shifts ShiftFinder, loc *time.Location) *AvailabilityService {
	return &AvailabilityService{
		shifts: shifts,
		loc:    loc,
		log:    logger.New("AvailabilityService"),
	}
}

func (s *AvailabilityService) Location() *time.Location {
	return s.loc
}

func (s *AvailabilityService) dayQuery(date time.Time, exclude *uuid.UUID) repositories.DayQuery {
	from, to := utils.DayRange(date, s.loc)
	return repositories.DayQuery{From: from, To: to, Exclude: exclude}
}

// CheckApartment returns a validation error when the apartment already has
// a shift on date. exclude leaves the shift being edited out of the check.
func (s *AvailabilityService) CheckApartment(
	ctx context.Context,
	tx *gorm.DB,
	apartmentID uuid.UUID,
	date time.Time,
	exclude *uuid.UUID,
) error {
	log := s.log.TraceFromContext(ctx).Function("CheckApartment")

	existing, err := s.shifts.ActiveForApartment(ctx, tx, apartmentID, s.dayQuery(date, exclude))
	if err != nil {
		return log.Err("failed to load apartment shifts", err, "apartmentID", apartmentID)
	}

	return s.reject(ApartmentConflict(existing))
}

// CheckOperator returns a validation error when the operator is full that
// day or the window sits too close to another of their shifts.
func (s *AvailabilityService) CheckOperator(
	ctx context.Context,
	tx *gorm.DB,
	cleanerID uuid.UUID,
	date, start, end time.Time,
	exclude *uuid.UUID,
) error {
	log := s.log.TraceFromContext(ctx).Function("CheckOperator")

	existing, err := s.shifts.ActiveForCleaner(ctx, tx, cleanerID, s.dayQuery(date, exclude))
	if err != nil {
		return log.Err("failed to load operator shifts", err, "cleanerID", cleanerID)
	}

	return s.reject(OperatorConflict(existing, start, end))
}

// CheckSlot runs the apartment check then the operator check for slot.
func (s *AvailabilityService) CheckSlot(
	ctx context.Context,
	tx *gorm.DB,
	slot models.ShiftSlot,
	exclude *uuid.UUID,
) error {
	if err := s.CheckApartment(ctx, tx, slot.ApartmentID, slot.Date, exclude); err != nil {
		return err
	}
	return s.CheckOperator(ctx, tx, slot.CleanerID, slot.Date, slot.Start, slot.EffectiveEnd(), exclude)
}

func (s *AvailabilityService) reject(conflict *Conflict) error {
	if conflict == nil {
		return nil
	}
	metrics.AvailabilityConflict(conflict.Kind)
	return types.Validation(conflict.Message)
}
