package services

import (
	"context"
	"testing"
	"time"
	"topup/internal/models"
	"topup/internal/repositories"
	"topup/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeShiftFinder struct {
	shifts  []*models.CleaningShift
	lastDay repositories.DayQuery
	findErr error
}

func (f *fakeShiftFinder) matching(
	day repositories.DayQuery,
	match func(*models.CleaningShift) bool,
) []*models.CleaningShift {
	f.lastDay = day
	var out []*models.CleaningShift
	for _, shift := range f.shifts {
		if !match(shift) || shift.IsCancelled() {
			continue
		}
		if shift.ScheduledDate.Before(day.From) || !shift.ScheduledDate.Before(day.To) {
			continue
		}
		if day.Exclude != nil && shift.ID == *day.Exclude {
			continue
		}
		out = append(out, shift)
	}
	return out
}

func (f *fakeShiftFinder) ActiveForApartment(
	_ context.Context,
	_ *gorm.DB,
	apartmentID uuid.UUID,
	day repositories.DayQuery,
) ([]*models.CleaningShift, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.matching(day, func(s *models.CleaningShift) bool { return s.ApartmentID == apartmentID }), nil
}

func (f *fakeShiftFinder) ActiveForCleaner(
	_ context.Context,
	_ *gorm.DB,
	cleanerID uuid.UUID,
	day repositories.DayQuery,
) ([]*models.CleaningShift, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.matching(day, func(s *models.CleaningShift) bool { return s.CleanerID == cleanerID }), nil
}

func rome(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	return loc
}

func clock(loc *time.Location, value string) time.Time {
	parsed, err := time.ParseInLocation("2006-01-02 15:04", "2025-03-10 "+value, loc)
	if err != nil {
		panic(err)
	}
	return parsed
}

func shiftAt(loc *time.Location, apartment, cleaner uuid.UUID, start, end string) *models.CleaningShift {
	startAt := clock(loc, start)
	var endAt *time.Time
	if end != "" {
		e := clock(loc, end)
		endAt = &e
	}
	shift := models.NewShift(apartment, cleaner, uuid.New(), startAt, startAt, endAt, loc)
	shift.ID = uuid.New()
	return shift
}

func slotAt(loc *time.Location, apartment, cleaner uuid.UUID, start, end string) models.ShiftSlot {
	shift := shiftAt(loc, apartment, cleaner, start, end)
	return shift.Slot()
}

func TestOperatorConflict(t *testing.T) {
	loc := time.UTC
	apt, op := uuid.New(), uuid.New()
	existing := []*models.CleaningShift{shiftAt(loc, apt, op, "09:00", "10:30")}

	testCases := []struct {
		name     string
		existing []*models.CleaningShift
		start    string
		end      string
		wantKind string
	}{
		{name: "sixty minutes after", existing: existing, start: "11:30", end: "12:30", wantKind: CONFLICT_OPERATOR_GAP},
		{name: "exactly ninety after", existing: existing, start: "12:00", end: "13:00"},
		{name: "exactly ninety before", existing: existing, start: "06:00", end: "07:30"},
		{name: "eighty nine before", existing: existing, start: "06:01", end: "07:31", wantKind: CONFLICT_OPERATOR_GAP},
		{name: "contained in existing", existing: []*models.CleaningShift{shiftAt(loc, apt, op, "08:00", "16:00")}, start: "11:00", end: "11:30", wantKind: CONFLICT_OPERATOR_GAP},
		{name: "open ended existing uses default duration", existing: []*models.CleaningShift{shiftAt(loc, apt, op, "09:00", "")}, start: "11:00", end: "12:00", wantKind: CONFLICT_OPERATOR_GAP},
		{name: "no shifts", start: "09:00", end: "10:00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conflict := OperatorConflict(tc.existing, clock(loc, tc.start), clock(loc, tc.end))
			if tc.wantKind == "" {
				assert.Nil(t, conflict)
				return
			}
			require.NotNil(t, conflict)
			assert.Equal(t, tc.wantKind, conflict.Kind)
		})
	}
}

func TestOperatorConflict_DailyCap(t *testing.T) {
	loc := time.UTC
	op := uuid.New()
	existing := []*models.CleaningShift{
		shiftAt(loc, uuid.New(), op, "06:00", "07:00"),
		shiftAt(loc, uuid.New(), op, "10:00", "11:00"),
		shiftAt(loc, uuid.New(), op, "14:00", "15:00"),
	}

	conflict := OperatorConflict(existing, clock(loc, "20:00"), clock(loc, "21:00"))
	require.NotNil(t, conflict)
	assert.Equal(t, CONFLICT_OPERATOR_FULL, conflict.Kind)
	assert.Equal(t, MSG_OPERATOR_FULL, conflict.Message)

	existing[2].Status = models.ShiftCancelled
	assert.Nil(t, OperatorConflict(existing, clock(loc, "20:00"), clock(loc, "21:00")))
}

func TestApartmentConflict(t *testing.T) {
	loc := time.UTC
	shift := shiftAt(loc, uuid.New(), uuid.New(), "09:00", "10:30")

	assert.Nil(t, ApartmentConflict(nil))
	require.NotNil(t, ApartmentConflict([]*models.CleaningShift{shift}))

	shift.Status = models.ShiftCancelled
	assert.Nil(t, ApartmentConflict([]*models.CleaningShift{shift}))
}

func TestAvailabilityService_CheckSlot(t *testing.T) {
	loc := rome(t)
	ctx := context.Background()
	aptX, aptY := uuid.New(), uuid.New()
	o1, o2 := uuid.New(), uuid.New()
	booked := shiftAt(loc, aptX, o1, "09:00", "10:30")

	testCases := []struct {
		name    string
		slot    models.ShiftSlot
		exclude *uuid.UUID
		wantMsg string
	}{
		{
			name:    "same apartment later that day",
			slot:    slotAt(loc, aptX, o2, "14:00", ""),
			wantMsg: MSG_APARTMENT_BOOKED,
		},
		{
			name:    "same operator sixty minutes later",
			slot:    slotAt(loc, aptY, o1, "11:30", "12:30"),
			wantMsg: MSG_OPERATOR_GAP,
		},
		{
			name: "same operator ninety minutes later",
			slot: slotAt(loc, aptY, o1, "12:00", "13:00"),
		},
		{
			name: "other apartment and operator",
			slot: slotAt(loc, aptY, o2, "09:00", ""),
		},
		{
			name:    "shift excluded from its own re-check",
			slot:    slotAt(loc, aptX, o1, "09:30", "11:00"),
			exclude: &booked.ID,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			finder := &fakeShiftFinder{shifts: []*models.CleaningShift{booked}}
			svc := NewAvailabilityService(finder, loc)

			err := svc.CheckSlot(ctx, nil, tc.slot, tc.exclude)
			if tc.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, types.KindValidation, types.KindOf(err))
			assert.Equal(t, tc.wantMsg, err.Error())
		})
	}
}

func TestAvailabilityService_DayWindow(t *testing.T) {
	loc := rome(t)
	finder := &fakeShiftFinder{}
	svc := NewAvailabilityService(finder, loc)

	date := clock(loc, "15:45")
	require.NoError(t, svc.CheckApartment(context.Background(), nil, uuid.New(), date, nil))

	assert.True(t, clock(loc, "00:00").Equal(finder.lastDay.From))
	assert.True(t, clock(loc, "00:00").AddDate(0, 0, 1).Equal(finder.lastDay.To))
	assert.Nil(t, finder.lastDay.Exclude)
}

func TestAvailabilityService_FinderError(t *testing.T) {
	finder := &fakeShiftFinder{findErr: assert.AnError}
	svc := NewAvailabilityService(finder, time.UTC)

	err := svc.CheckOperator(
		context.Background(),
		nil,
		uuid.New(),
		clock(time.UTC, "00:00"),
		clock(time.UTC, "09:00"),
		clock(time.UTC, "10:00"),
		nil,
	)
	assert.Error(t, err)
	assert.NotEqual(t, types.KindValidation, types.KindOf(err))
}
