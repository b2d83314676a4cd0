package shiftController

import (
	"context"
	"testing"
	"topup/internal/models"
	"topup/internal/services"
	"topup/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeChange_ReassignmentNeedsNewConfirmation(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")
	_, err := w.controller.ConfirmSeen(ctx, w.o1, shift.ID)
	require.NoError(t, err)
	w.notifier.reset()

	staged, err := w.controller.RequestTimeChange(ctx, w.admin, shift.ID, TimeChangeRequestBody{
		NewCleanerID: &w.o2.ID,
	})
	require.NoError(t, err)
	assert.False(t, staged.Confirmation().Confirmed)
	assert.Equal(t, models.TimeChangePending, staged.PendingTimeChange().Status)
	assert.Equal(t, w.o1.ID, staged.CleanerID)

	require.Len(t, w.notifier.intents, 1)
	assert.Equal(t, w.o2.ID, w.notifier.intents[0].RecipientID)
	assert.Equal(t, models.NotificationTimeChangeRequestedByAdmin, w.notifier.intents[0].Type)
	assert.Contains(t, w.notifier.intents[0].Message, "operator")
	w.notifier.reset()

	committed, err := w.controller.AnswerTimeChange(ctx, w.o2, shift.ID, true)
	require.NoError(t, err)
	assert.Equal(t, w.o2.ID, committed.CleanerID)
	assert.False(t, committed.Confirmation().Confirmed)

	req := committed.PendingTimeChange()
	assert.Equal(t, models.TimeChangeOperatorConfirmed, req.Status)
	assert.True(t, req.OperatorConfirmed)
	assert.NotNil(t, req.OperatorConfirmedAt)

	assert.ElementsMatch(t, []uuid.UUID{w.owner.ID, w.admin.ID}, w.notifier.recipients())
	for _, kind := range w.notifier.kinds() {
		assert.Equal(t, models.NotificationTimeChangeConfirmedByOperator, kind)
	}

	stored := w.stored(shift.ID)
	assert.Equal(t, w.o2.ID, stored.CleanerID)
	assert.False(t, stored.Confirmation().Confirmed)
}

func TestTimeChange_SameOperatorKeepsConfirmation(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")
	_, err := w.controller.ConfirmSeen(ctx, w.o1, shift.ID)
	require.NoError(t, err)

	_, err = w.controller.RequestTimeChange(ctx, w.admin, shift.ID, TimeChangeRequestBody{
		NewCleanerID: &w.o1.ID,
		NewStartTime: w.ptr("12:00"),
	})
	require.NoError(t, err)

	committed, err := w.controller.AnswerTimeChange(ctx, w.o1, shift.ID, true)
	require.NoError(t, err)
	assert.True(t, committed.Confirmation().Confirmed)
	assert.True(t, committed.ScheduledStartTime.Equal(w.at("12:00")))
	require.NotNil(t, committed.ScheduledEndTime)
	assert.True(t, committed.ScheduledEndTime.Equal(w.at("13:30")))
}

func TestTimeChange_ProposedNullEndClearsEnd(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "12:00")

	_, err := w.controller.RequestTimeChange(ctx, w.owner, shift.ID, TimeChangeRequestBody{
		NewEndTime: types.NullTime(),
	})
	require.NoError(t, err)

	committed, err := w.controller.AnswerTimeChange(ctx, w.o1, shift.ID, true)
	require.NoError(t, err)
	assert.Nil(t, committed.ScheduledEndTime)
	assert.True(t, committed.EffectiveEnd().Equal(w.at("11:30")))
}

func TestTimeChange_RequestRules(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")

	_, err := w.controller.RequestTimeChange(ctx, w.admin, shift.ID, TimeChangeRequestBody{})
	assert.EqualError(t, err, models.ErrNoChangesRequested.Error())

	_, err = w.controller.RequestTimeChange(ctx, w.viewer, shift.ID, TimeChangeRequestBody{NewStartTime: w.ptr("12:00")})
	assert.Equal(t, types.KindForbidden, types.KindOf(err))

	_, err = w.controller.RequestTimeChange(ctx, w.o2, shift.ID, TimeChangeRequestBody{NewStartTime: w.ptr("12:00")})
	assert.Equal(t, types.KindForbidden, types.KindOf(err))

	_, err = w.controller.RequestTimeChange(ctx, w.otherOwner, shift.ID, TimeChangeRequestBody{NewStartTime: w.ptr("12:00")})
	assert.Equal(t, types.KindForbidden, types.KindOf(err))

	_, err = w.controller.RequestTimeChange(ctx, w.admin, shift.ID, TimeChangeRequestBody{NewCleanerID: &w.owner.ID, NewApartmentID: new(uuid.UUID)})
	assert.Equal(t, types.KindNotFound, types.KindOf(err))

	_, err = w.controller.RequestTimeChange(ctx, w.admin, shift.ID, TimeChangeRequestBody{NewEndTime: types.SomeTime(w.at("09:00"))})
	assert.EqualError(t, err, models.ErrEndBeforeStart.Error())

	assert.Nil(t, w.stored(shift.ID).PendingTimeChange())
}

func TestTimeChange_CutoffAppliesToAdminsAndOwners(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")
	w.now = w.at("09:00")

	for _, user := range []*models.User{w.admin, w.owner} {
		_, err := w.controller.RequestTimeChange(ctx, user, shift.ID, TimeChangeRequestBody{NewStartTime: w.ptr("12:00")})
		assert.EqualError(t, err, MSG_TIME_CHANGE_TOO_LATE, string(user.Role))
	}

	w.now = w.at("08:59")
	_, err := w.controller.RequestTimeChange(ctx, w.owner, shift.ID, TimeChangeRequestBody{NewStartTime: w.ptr("12:00")})
	assert.NoError(t, err)

	w.now = w.at("09:45")
	_, err = w.controller.RequestTimeChange(ctx, w.o1, shift.ID, TimeChangeRequestBody{NewStartTime: w.ptr("12:30")})
	assert.NoError(t, err)
}

func TestTimeChange_OperatorRequestNotifiesOwnerAndAdmins(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")
	w.notifier.reset()

	_, err := w.controller.RequestTimeChange(ctx, w.o1, shift.ID, TimeChangeRequestBody{NewStartTime: w.ptr("12:00")})
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{w.owner.ID, w.admin.ID}, w.notifier.recipients())
	for _, kind := range w.notifier.kinds() {
		assert.Equal(t, models.NotificationTimeChangeRequest, kind)
	}
}

func TestAnswerTimeChange_ConflictKeepsRequestPending(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")
	w.mustCreate(w.aptY, w.o2, "12:00", "13:00")

	_, err := w.controller.RequestTimeChange(ctx, w.admin, shift.ID, TimeChangeRequestBody{NewCleanerID: &w.o2.ID})
	require.NoError(t, err)

	_, err = w.controller.AnswerTimeChange(ctx, w.o2, shift.ID, true)
	require.Error(t, err)
	assert.EqualError(t, err, services.MSG_OPERATOR_GAP)

	stored := w.stored(shift.ID)
	assert.Equal(t, w.o1.ID, stored.CleanerID)
	assert.Equal(t, models.TimeChangePending, stored.PendingTimeChange().Status)
}

func TestAnswerTimeChange_MovingOntoBookedApartment(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")
	w.mustCreate(w.aptY, w.o2, "15:00", "16:00")

	_, err := w.controller.RequestTimeChange(ctx, w.admin, shift.ID, TimeChangeRequestBody{NewApartmentID: &w.aptY.ID})
	require.NoError(t, err)

	_, err = w.controller.AnswerTimeChange(ctx, w.o1, shift.ID, true)
	assert.EqualError(t, err, services.MSG_APARTMENT_BOOKED)
	assert.Equal(t, w.aptX.ID, w.stored(shift.ID).ApartmentID)
}

func TestAnswerTimeChange_Decline(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")

	_, err := w.controller.RequestTimeChange(ctx, w.admin, shift.ID, TimeChangeRequestBody{NewStartTime: w.ptr("13:00")})
	require.NoError(t, err)
	w.notifier.reset()

	declined, err := w.controller.AnswerTimeChange(ctx, w.o1, shift.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.TimeChangeOperatorRejected, declined.PendingTimeChange().Status)
	assert.True(t, declined.ScheduledStartTime.Equal(w.at("10:00")))
	for _, kind := range w.notifier.kinds() {
		assert.Equal(t, models.NotificationTimeChangeRejected, kind)
	}

	_, err = w.controller.AnswerTimeChange(ctx, w.o1, shift.ID, true)
	assert.EqualError(t, err, models.ErrTimeChangeNotPending.Error())
}

func TestAnswerTimeChange_Rules(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")

	_, err := w.controller.AnswerTimeChange(ctx, w.o1, shift.ID, true)
	assert.Equal(t, types.KindValidation, types.KindOf(err))
	assert.EqualError(t, err, models.ErrNoTimeChangeRequest.Error())

	_, err = w.controller.AnswerTimeChange(ctx, w.o2, shift.ID, true)
	assert.EqualError(t, err, MSG_ANSWER_FORBIDDEN)

	_, err = w.controller.AnswerTimeChange(ctx, w.admin, shift.ID, true)
	assert.Equal(t, types.KindForbidden, types.KindOf(err))
}

func TestReviewTimeChange_ApprovalMovesTimesOnly(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")

	_, err := w.controller.RequestTimeChange(ctx, w.o1, shift.ID, TimeChangeRequestBody{
		NewStartTime:   w.ptr("12:00"),
		NewApartmentID: &w.aptY.ID,
	})
	require.NoError(t, err)
	w.notifier.reset()

	reviewed, err := w.controller.ReviewTimeChange(ctx, w.owner, shift.ID, models.TimeChangeApproved)
	require.NoError(t, err)
	assert.True(t, reviewed.ScheduledStartTime.Equal(w.at("12:00")))
	assert.True(t, reviewed.ScheduledEndTime.Equal(w.at("13:30")))
	assert.Equal(t, w.aptX.ID, reviewed.ApartmentID)

	req := reviewed.PendingTimeChange()
	assert.Equal(t, models.TimeChangeApproved, req.Status)
	require.NotNil(t, req.ReviewedBy)
	assert.Equal(t, w.owner.ID, *req.ReviewedBy)

	require.Len(t, w.notifier.intents, 1)
	assert.Equal(t, w.o1.ID, w.notifier.intents[0].RecipientID)
	assert.Equal(t, models.NotificationTimeChangeApproved, w.notifier.intents[0].Type)

	_, err = w.controller.ReviewTimeChange(ctx, w.owner, shift.ID, models.TimeChangeRejected)
	assert.EqualError(t, err, models.ErrTimeChangeNotPending.Error())
}

func TestReviewTimeChange_Rules(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")

	_, err := w.controller.ReviewTimeChange(ctx, w.owner, shift.ID, models.TimeChangeApproved)
	assert.EqualError(t, err, models.ErrNoTimeChangeRequest.Error())

	_, err = w.controller.RequestTimeChange(ctx, w.o1, shift.ID, TimeChangeRequestBody{NewStartTime: w.ptr("12:00")})
	require.NoError(t, err)

	testCases := []struct {
		name     string
		user     *models.User
		decision models.TimeChangeStatus
		message  string
	}{
		{name: "admin", user: w.admin, decision: models.TimeChangeApproved, message: MSG_REVIEW_FORBIDDEN},
		{name: "operator", user: w.o1, decision: models.TimeChangeApproved, message: MSG_REVIEW_FORBIDDEN},
		{name: "other owner", user: w.otherOwner, decision: models.TimeChangeApproved, message: MSG_REVIEW_NOT_OWNER},
		{name: "bad decision", user: w.owner, decision: models.TimeChangeOperatorConfirmed, message: MSG_INVALID_REVIEW_STATUS},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := w.controller.ReviewTimeChange(ctx, tc.user, shift.ID, tc.decision)
			assert.EqualError(t, err, tc.message)
		})
	}

	rejected, err := w.controller.ReviewTimeChange(ctx, w.owner, shift.ID, models.TimeChangeRejected)
	require.NoError(t, err)
	assert.Equal(t, models.TimeChangeRejected, rejected.PendingTimeChange().Status)
	assert.True(t, rejected.ScheduledStartTime.Equal(w.at("10:00")))
}

func TestReviewTimeChange_ApprovalRechecksOperatorDay(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")
	w.mustCreate(w.aptY, w.o1, "14:00", "15:00")

	_, err := w.controller.RequestTimeChange(ctx, w.o1, shift.ID, TimeChangeRequestBody{NewStartTime: w.ptr("12:00")})
	require.NoError(t, err)

	_, err = w.controller.ReviewTimeChange(ctx, w.owner, shift.ID, models.TimeChangeApproved)
	assert.EqualError(t, err, services.MSG_OPERATOR_GAP)
	assert.Equal(t, models.TimeChangePending, w.stored(shift.ID).PendingTimeChange().Status)
}

func TestAnswerTimeChange_OperatorHandoffNeedsAssignee(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	shift := w.mustCreate(w.aptX, w.o1, "10:00", "11:30")

	_, err := w.controller.RequestTimeChange(ctx, w.o1, shift.ID, TimeChangeRequestBody{NewCleanerID: &w.o2.ID})
	require.NoError(t, err)

	_, err = w.controller.AnswerTimeChange(ctx, w.o2, shift.ID, true)
	assert.EqualError(t, err, MSG_ANSWER_FORBIDDEN)
	assert.Equal(t, types.KindForbidden, types.KindOf(err))

	stored := w.stored(shift.ID)
	assert.Equal(t, w.o1.ID, stored.CleanerID)
	assert.Equal(t, models.TimeChangePending, stored.PendingTimeChange().Status)
}
