package shiftController

import (
	"context"
	"testing"
	"time"
	"topup/internal/models"
	"topup/internal/services"
	"topup/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestUpdate_OwnerGuestCount(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")
	w.notifier.reset()

	updated, err := w.controller.Update(ctx, w.owner, shift.ID, UpdateShiftRequest{GuestCount: intPtr(4)})
	require.NoError(t, err)
	require.NotNil(t, updated.GuestCount)
	assert.Equal(t, 4, *updated.GuestCount)

	require.Len(t, w.notifier.intents, 1)
	assert.Equal(t, w.o1.ID, w.notifier.intents[0].RecipientID)
	assert.Equal(t, models.NotificationShiftTimeChanged, w.notifier.intents[0].Type)
	assert.Contains(t, w.notifier.intents[0].Message, "4")
}

func TestUpdate_OwnerRestrictions(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")

	_, err := w.controller.Update(ctx, w.owner, shift.ID, UpdateShiftRequest{ScheduledStartTime: w.ptr("12:00")})
	assert.EqualError(t, err, MSG_OWNER_EDIT_FIELDS)

	_, err = w.controller.Update(ctx, w.otherOwner, shift.ID, UpdateShiftRequest{GuestCount: intPtr(2)})
	assert.EqualError(t, err, MSG_OWNER_EDIT_FORBIDDEN)

	_, err = w.controller.Update(ctx, w.owner, shift.ID, UpdateShiftRequest{GuestCount: intPtr(0)})
	assert.EqualError(t, err, MSG_INVALID_GUEST_COUNT)

	w.now = w.at("10:00")
	_, err = w.controller.Update(ctx, w.owner, shift.ID, UpdateShiftRequest{GuestCount: intPtr(2)})
	assert.EqualError(t, err, MSG_SHIFT_STARTED)

	assert.Nil(t, w.stored(shift.ID).GuestCount)
}

func TestUpdate_OperatorProgress(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")
	w.now = w.at("10:10")

	_, err := w.controller.Update(ctx, w.o1, shift.ID, UpdateShiftRequest{ActualEndTime: w.ptr("11:30")})
	assert.EqualError(t, err, MSG_COMPLETE_NOT_STARTED)

	_, err = w.controller.Update(ctx, w.o1, shift.ID, UpdateShiftRequest{ActualStartTime: w.ptr("09:55")})
	assert.EqualError(t, err, MSG_START_TOO_EARLY)

	_, err = w.controller.Update(ctx, w.o2, shift.ID, UpdateShiftRequest{ActualStartTime: w.ptr("10:05")})
	assert.Equal(t, types.KindForbidden, types.KindOf(err))

	started, err := w.controller.Update(ctx, w.o1, shift.ID, UpdateShiftRequest{ActualStartTime: w.ptr("10:05")})
	require.NoError(t, err)
	assert.Equal(t, models.ShiftInProgress, started.Status)

	_, err = w.controller.Update(ctx, w.o1, shift.ID, UpdateShiftRequest{ActualEndTime: w.ptr("11:00")})
	assert.EqualError(t, err, MSG_COMPLETE_TOO_SOON)

	done, err := w.controller.Update(ctx, w.o1, shift.ID, UpdateShiftRequest{ActualEndTime: w.ptr("11:05")})
	require.NoError(t, err)
	assert.Equal(t, models.ShiftCompleted, done.Status)
	assert.True(t, done.ActualEndTime.Equal(w.at("11:05")))
}

func TestUpdate_OperatorOneShiftAtATime(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	first := w.mustCreate(w.aptX, w.o1, "08:00", "09:00")
	second := w.mustCreate(w.aptY, w.o1, "10:30", "11:30")

	w.now = w.at("08:00")
	_, err := w.controller.Update(ctx, w.o1, first.ID, UpdateShiftRequest{ActualStartTime: w.ptr("08:00")})
	require.NoError(t, err)

	w.now = w.at("10:30")
	_, err = w.controller.Update(ctx, w.o1, second.ID, UpdateShiftRequest{ActualStartTime: w.ptr("10:30")})
	assert.EqualError(t, err, MSG_ANOTHER_IN_PROGRESS)
}

func TestUpdate_OperatorCannotMoveOrCancel(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")
	cancelled := models.ShiftCancelled

	for name, request := range map[string]UpdateShiftRequest{
		"move":   {ScheduledStartTime: w.ptr("12:00")},
		"cancel": {Status: &cancelled},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := w.controller.Update(ctx, w.o1, shift.ID, request)
			assert.Equal(t, types.KindForbidden, types.KindOf(err))
		})
	}
}

func TestUpdate_AdminEditWindows(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")

	w.now = w.at("10:00").Add(-17 * time.Hour)
	_, err := w.controller.Update(ctx, w.admin, shift.ID, UpdateShiftRequest{ScheduledStartTime: w.ptr("12:00")})
	assert.EqualError(t, err, MSG_SLOT_EDIT_TOO_LATE)

	reassigned, err := w.controller.Update(ctx, w.admin, shift.ID, UpdateShiftRequest{CleanerID: &w.o2.ID})
	require.NoError(t, err)
	assert.Equal(t, w.o2.ID, reassigned.CleanerID)

	w.now = w.at("10:00").Add(-9 * time.Hour)
	_, err = w.controller.Update(ctx, w.admin, shift.ID, UpdateShiftRequest{CleanerID: &w.o3.ID})
	assert.EqualError(t, err, MSG_OPERATOR_EDIT_TOO_LATE)

	notes := "bring extra towels"
	updated, err := w.controller.Update(ctx, w.admin, shift.ID, UpdateShiftRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, *updated.Notes)
}

func TestUpdate_AdminReassignResetsConfirmation(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")
	_, err := w.controller.ConfirmSeen(ctx, w.o1, shift.ID)
	require.NoError(t, err)
	w.notifier.reset()

	updated, err := w.controller.Update(ctx, w.admin, shift.ID, UpdateShiftRequest{CleanerID: &w.o2.ID})
	require.NoError(t, err)
	assert.False(t, updated.Confirmation().Confirmed)

	assert.ElementsMatch(t, []uuid.UUID{w.o1.ID, w.o2.ID}, w.notifier.recipients())
	for _, kind := range w.notifier.kinds() {
		assert.Equal(t, models.NotificationShiftAssigned, kind)
	}
}

func TestUpdate_AdminRescheduleRechecksAvailability(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")
	w.mustCreate(w.aptY, w.o1, "14:00", "15:00")
	w.notifier.reset()

	moved, err := w.controller.Update(ctx, w.admin, shift.ID, UpdateShiftRequest{
		ScheduledStartTime: w.ptr("10:30"),
		ScheduledEndTime:   types.SomeTime(w.at("12:00")),
	})
	require.NoError(t, err)
	assert.True(t, moved.ScheduledStartTime.Equal(w.at("10:30")))
	require.Len(t, w.notifier.intents, 1)
	assert.Equal(t, models.NotificationShiftTimeChanged, w.notifier.intents[0].Type)

	_, err = w.controller.Update(ctx, w.admin, shift.ID, UpdateShiftRequest{ScheduledEndTime: types.SomeTime(w.at("13:00"))})
	assert.EqualError(t, err, services.MSG_OPERATOR_GAP)

	_, err = w.controller.Update(ctx, w.admin, shift.ID, UpdateShiftRequest{ApartmentID: &w.aptY.ID})
	assert.EqualError(t, err, services.MSG_APARTMENT_BOOKED)

	_, err = w.controller.Update(ctx, w.admin, shift.ID, UpdateShiftRequest{ScheduledEndTime: types.SomeTime(w.at("10:00"))})
	assert.EqualError(t, err, models.ErrEndBeforeStart.Error())

	cleared, err := w.controller.Update(ctx, w.admin, shift.ID, UpdateShiftRequest{ScheduledEndTime: types.NullTime()})
	require.NoError(t, err)
	assert.Nil(t, cleared.ScheduledEndTime)
}

func TestUpdate_AdminMoveRefreshesApartment(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")
	w.notifier.reset()

	moved, err := w.controller.Update(ctx, w.admin, shift.ID, UpdateShiftRequest{ApartmentID: &w.aptY.ID})
	require.NoError(t, err)
	require.NotNil(t, moved.Apartment)
	assert.Equal(t, w.aptY.ID, moved.Apartment.ID)
	require.Len(t, w.notifier.intents, 1)
	assert.Contains(t, w.notifier.intents[0].Message, "Apartment Y")
}
